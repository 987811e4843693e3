// Package gateway joins the relational and object-storage halves of the
// remote backend into one domain.Gateway.
package gateway

import (
	"github.com/alfanzaky/sitecomply/internal/domain"
)

type gateway struct {
	domain.RowGateway
	domain.FileGateway
}

// New composes rows and files into a single gateway.
func New(rows domain.RowGateway, files domain.FileGateway) domain.Gateway {
	return &gateway{RowGateway: rows, FileGateway: files}
}
