package app

import (
	"context"
	"time"

	"github.com/keepitcut/callerid-lookup/internal/callerid_service/adapters/meevo"
	"github.com/keepitcut/callerid-lookup/internal/callerid_service/domain"
)

// DirectoryAPI is the upstream surface the resolvers need. *meevo.Client
// satisfies it; tests substitute a mock.
type DirectoryAPI interface {
	Token(ctx context.Context) (string, error)
	ClientsPage(ctx context.Context, token string, page, itemsPerPage int) ([]meevo.ClientRecord, error)
	ChangedClientsPage(ctx context.Context, token string, since time.Time, page int) ([]meevo.ClientRecord, error)
	ClientByID(ctx context.Context, token, id string) (*meevo.ClientRecord, error)
}

// Resolver is one stage of the lookup pipeline. A (nil, nil) return means
// "no answer from this stage, try the next one"; an error aborts only this
// stage, never the request.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, token string, key domain.PhoneKey) (*domain.CustomerRecord, error)
}
