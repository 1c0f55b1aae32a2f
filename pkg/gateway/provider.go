package gateway

import (
	"context"

	"github.com/google/uuid"

	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/ports"
)

// MockProvider stands in for a real messaging integration. It accepts
// every payload and assigns a fresh message ID. Production deployments
// replace it with a provider-backed implementation of ports.Provider.
type MockProvider struct{}

var _ ports.Provider = (*MockProvider)(nil)

// NewMockProvider creates the stand-in provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Name identifies the provider.
func (p *MockProvider) Name() string {
	return "mock"
}

// Send acknowledges the payload without any external call.
func (p *MockProvider) Send(ctx context.Context, payload domain.SMSPayload) (ports.Receipt, error) {
	return ports.Receipt{
		MessageID: uuid.NewString(),
		Provider:  p.Name(),
	}, nil
}
