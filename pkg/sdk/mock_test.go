package dlf

import (
	"context"
	"net/url"
	"testing"

	"github.com/kailas-cloud/dlf/internal/secret"
	healthuc "github.com/kailas-cloud/dlf/internal/usecase/health"
	searchuc "github.com/kailas-cloud/dlf/internal/usecase/search"
)

const testKey = "0123456789abcdef"

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, q url.Values) (searchuc.Response, error)
}

func (m *mockSearchUC) Search(ctx context.Context, q url.Values) (searchuc.Response, error) {
	return m.searchFn(ctx, q)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

// --- helpers ---

func testClient(t *testing.T, searchSvc searchUseCase, healthSvc healthUseCase) *Client {
	codec, err := secret.NewCodec(testKey)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return &Client{
		codec:     codec,
		searchSvc: searchSvc,
		healthSvc: healthSvc,
	}
}
