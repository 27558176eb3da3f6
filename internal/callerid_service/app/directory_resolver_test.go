package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keepitcut/callerid-lookup/internal/callerid_service/adapters/meevo"
	"github.com/keepitcut/callerid-lookup/internal/callerid_service/domain"
)

func directoryPage(ids ...string) []meevo.ClientRecord {
	records := make([]meevo.ClientRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, meevo.ClientRecord{ClientID: id, PrimaryPhoneNumber: "555-000-1111"})
	}
	return records
}

func TestDirectoryResolver_SequentialFindsMatch(t *testing.T) {
	api := new(MockDirectoryAPI)
	api.On("ClientsPage", mock.Anything, "tok", 1, 20).Return(directoryPage("a", "b"), nil)
	api.On("ClientsPage", mock.Anything, "tok", 2, 20).Return([]meevo.ClientRecord{
		{ClientID: "match", FirstName: "Amy", LastName: "Holton", PrimaryPhoneNumber: "+1 (757) 123-4567"},
	}, nil)

	resolver := NewDirectoryResolver(api, 20, 10, false, 10, testLogger())

	rec, err := resolver.Resolve(context.Background(), "tok", "7571234567")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "match", rec.ID)
	assert.Equal(t, domain.SourceDirectoryScan, rec.Source)
	api.AssertNumberOfCalls(t, "ClientsPage", 2)
}

// Non-empty pages 1-3 and an empty page 4 with maxPages=10: the scan must
// examine exactly pages 1-4 and stop, whether or not later pages could match.
func TestDirectoryResolver_SequentialStopsAtEmptyPage(t *testing.T) {
	api := new(MockDirectoryAPI)
	api.On("ClientsPage", mock.Anything, "tok", 1, 20).Return(directoryPage("a"), nil)
	api.On("ClientsPage", mock.Anything, "tok", 2, 20).Return(directoryPage("b"), nil)
	api.On("ClientsPage", mock.Anything, "tok", 3, 20).Return(directoryPage("c"), nil)
	api.On("ClientsPage", mock.Anything, "tok", 4, 20).Return([]meevo.ClientRecord{}, nil)

	resolver := NewDirectoryResolver(api, 20, 10, false, 10, testLogger())

	rec, err := resolver.Resolve(context.Background(), "tok", "7571234567")
	require.NoError(t, err)
	assert.Nil(t, rec)
	api.AssertNumberOfCalls(t, "ClientsPage", 4)
	api.AssertNotCalled(t, "ClientsPage", mock.Anything, "tok", 5, 20)
}

func TestDirectoryResolver_SequentialMaxPagesExhausted(t *testing.T) {
	api := new(MockDirectoryAPI)
	api.On("ClientsPage", mock.Anything, "tok", mock.Anything, 20).Return(directoryPage("x"), nil)

	resolver := NewDirectoryResolver(api, 20, 3, false, 10, testLogger())

	rec, err := resolver.Resolve(context.Background(), "tok", "7571234567")
	require.NoError(t, err)
	assert.Nil(t, rec)
	api.AssertNumberOfCalls(t, "ClientsPage", 3)
}

func TestDirectoryResolver_SequentialPageErrorAbortsScan(t *testing.T) {
	api := new(MockDirectoryAPI)
	api.On("ClientsPage", mock.Anything, "tok", 1, 20).Return(directoryPage("a"), nil)
	api.On("ClientsPage", mock.Anything, "tok", 2, 20).Return(nil, domain.ErrUpstreamPage)

	resolver := NewDirectoryResolver(api, 20, 10, false, 10, testLogger())

	rec, err := resolver.Resolve(context.Background(), "tok", "7571234567")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, domain.ErrUpstreamPage)
	api.AssertNumberOfCalls(t, "ClientsPage", 2)
}

// When several pages of one concurrent batch contain a match, the lowest
// page number must win so results stay deterministic for a static dataset.
func TestDirectoryResolver_ParallelLowestPageWins(t *testing.T) {
	match := func(id string) []meevo.ClientRecord {
		return []meevo.ClientRecord{{ClientID: id, PrimaryPhoneNumber: "7571234567"}}
	}

	api := new(MockDirectoryAPI)
	api.On("ClientsPage", mock.Anything, "tok", 1, 20).Return(directoryPage("a"), nil)
	api.On("ClientsPage", mock.Anything, "tok", 2, 20).Return(match("page2"), nil)
	api.On("ClientsPage", mock.Anything, "tok", 3, 20).Return(match("page3"), nil)

	resolver := NewDirectoryResolver(api, 20, 3, true, 3, testLogger())

	rec, err := resolver.Resolve(context.Background(), "tok", "7571234567")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "page2", rec.ID)
}

func TestDirectoryResolver_ParallelEmptyPageEndsScan(t *testing.T) {
	api := new(MockDirectoryAPI)
	api.On("ClientsPage", mock.Anything, "tok", 1, 20).Return(directoryPage("a"), nil)
	api.On("ClientsPage", mock.Anything, "tok", 2, 20).Return([]meevo.ClientRecord{}, nil)
	api.On("ClientsPage", mock.Anything, "tok", 3, 20).Return(directoryPage("c"), nil)

	resolver := NewDirectoryResolver(api, 20, 9, true, 3, testLogger())

	rec, err := resolver.Resolve(context.Background(), "tok", "7571234567")
	require.NoError(t, err)
	assert.Nil(t, rec)
	// Only the first batch runs; the empty page 2 ends the scan.
	api.AssertNumberOfCalls(t, "ClientsPage", 3)
}

func TestDirectoryResolver_ParallelAdvancesRounds(t *testing.T) {
	api := new(MockDirectoryAPI)
	api.On("ClientsPage", mock.Anything, "tok", 1, 20).Return(directoryPage("a"), nil)
	api.On("ClientsPage", mock.Anything, "tok", 2, 20).Return(directoryPage("b"), nil)
	api.On("ClientsPage", mock.Anything, "tok", 3, 20).Return([]meevo.ClientRecord{
		{ClientID: "late", PrimaryPhoneNumber: "(757) 123-4567"},
	}, nil)
	api.On("ClientsPage", mock.Anything, "tok", 4, 20).Return(directoryPage("d"), nil)

	resolver := NewDirectoryResolver(api, 20, 4, true, 2, testLogger())

	rec, err := resolver.Resolve(context.Background(), "tok", "7571234567")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "late", rec.ID)
}
