package provider

import (
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/marketdata/writer"
)

// mockWriter is a simple mock implementation of MarketDataWriter for testing.
type mockWriter struct {
	initialized       bool
	initializeErr     error
	writeErr          error
	writeErrAfterN    int // Return writeErr after N successful writes (0 means immediate error)
	finalizeErr       error
	closeErr          error
	outputPath        string
	symbols           []string
	writtenData       []types.DailyRecord
	writeCallCount    int
	finalizeCallCount int
	closeCallCount    int
}

var _ writer.MarketDataWriter = (*mockWriter)(nil)

func (m *mockWriter) Initialize() error {
	if m.initializeErr != nil {
		return m.initializeErr
	}

	m.initialized = true

	return nil
}

func (m *mockWriter) Write(symbol string, record types.DailyRecord) error {
	m.writeCallCount++
	if m.writeErr != nil && (m.writeErrAfterN == 0 || m.writeCallCount > m.writeErrAfterN) {
		return m.writeErr
	}

	m.symbols = append(m.symbols, symbol)
	m.writtenData = append(m.writtenData, record)

	return nil
}

func (m *mockWriter) Finalize() (string, error) {
	m.finalizeCallCount++
	if m.finalizeErr != nil {
		return "", m.finalizeErr
	}

	return m.outputPath, nil
}

func (m *mockWriter) Close() error {
	m.closeCallCount++

	return m.closeErr
}

func (m *mockWriter) GetOutputPath() string {
	return m.outputPath
}
