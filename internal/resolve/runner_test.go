package resolve

import (
	"context"
	"strings"
	"sync"
	"testing"

	"contract-chat-mapping/internal/core/domain"
)

// mapStages resolves via fixed per-contract-number outcomes.
type mapStages struct {
	mu       sync.Mutex
	statuses map[string]domain.Status
	order    []string
}

func (m *mapStages) SearchContractID(ctx context.Context, contractNumber string) domain.StageResult {
	m.mu.Lock()
	m.order = append(m.order, contractNumber)
	status := m.statuses[contractNumber]
	m.mu.Unlock()

	if status == domain.StatusSuccess || status == "" {
		return domain.StageOK("c-"+contractNumber, 0)
	}
	return domain.StageFail(status, 0, "", "")
}

func (m *mapStages) CooperationID(ctx context.Context, contractID string) domain.StageResult {
	return domain.StageOK("coop-"+contractID, 0)
}

func (m *mapStages) OpenChatID(ctx context.Context, cooperationID string) domain.StageResult {
	return domain.StageOK("oc_"+cooperationID, 0)
}

func TestRunner_PreservesInputOrder(t *testing.T) {
	stages := &mapStages{statuses: map[string]domain.Status{}}
	runner := NewRunner(NewPipeline(stages, stages, stages, testLogger()),
		RunnerConfig{Concurrency: 4}, testLogger())

	input := []string{"CN-1", "CN-2", "CN-3", "CN-4", "CN-5", "CN-6", "CN-7", "CN-8"}
	rows := runner.Run(context.Background(), input, nil)

	if len(rows) != len(input) {
		t.Fatalf("expected %d rows, got %d", len(input), len(rows))
	}
	for i, row := range rows {
		if row.ContractNumber != input[i] {
			t.Errorf("row %d: got %q, want %q", i, row.ContractNumber, input[i])
		}
		if row.Status != domain.StatusSuccess {
			t.Errorf("row %d: unexpected status %v", i, row.Status)
		}
	}
}

func TestRunner_ReportsProgress(t *testing.T) {
	stages := &mapStages{statuses: map[string]domain.Status{
		"CN-2": domain.StatusNotFoundContract,
	}}
	runner := NewRunner(NewPipeline(stages, stages, stages, testLogger()),
		RunnerConfig{Concurrency: 1}, testLogger())

	var last Progress
	rows := runner.Run(context.Background(), []string{"CN-1", "CN-2", "CN-3"}, func(p Progress) {
		last = p
	})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if last.Done != 3 || last.Total != 3 || last.Succeeded != 2 || last.Failed != 1 {
		t.Errorf("unexpected final progress: %+v", last)
	}
}

func TestRunner_AbortOnAuthFailure(t *testing.T) {
	stages := &mapStages{statuses: map[string]domain.Status{
		"CN-2": domain.StatusAuthFailed,
	}}
	runner := NewRunner(NewPipeline(stages, stages, stages, testLogger()),
		RunnerConfig{Concurrency: 1, AbortOnAuthFailure: true}, testLogger())

	input := []string{"CN-1", "CN-2", "CN-3", "CN-4"}
	rows := runner.Run(context.Background(), input, nil)

	if rows[0].Status != domain.StatusSuccess {
		t.Errorf("row before the failure must complete: %+v", rows[0])
	}
	if rows[1].Status != domain.StatusAuthFailed {
		t.Errorf("failing row must be AUTH_FAILED: %+v", rows[1])
	}
	for i := 2; i < 4; i++ {
		if rows[i].Status != domain.StatusAuthFailed {
			t.Errorf("row %d must be marked AUTH_FAILED after abort: %+v", i, rows[i])
		}
		if !strings.Contains(rows[i].ErrorMessage, "skipped") {
			t.Errorf("row %d must be marked as skipped: %+v", i, rows[i])
		}
	}

	stages.mu.Lock()
	resolved := len(stages.order)
	stages.mu.Unlock()
	if resolved != 2 {
		t.Errorf("expected 2 resolutions before the abort, got %d", resolved)
	}
}

func TestRunner_NoAbortByDefault(t *testing.T) {
	stages := &mapStages{statuses: map[string]domain.Status{
		"CN-1": domain.StatusAuthFailed,
	}}
	runner := NewRunner(NewPipeline(stages, stages, stages, testLogger()),
		RunnerConfig{Concurrency: 1}, testLogger())

	rows := runner.Run(context.Background(), []string{"CN-1", "CN-2"}, nil)
	if rows[1].Status != domain.StatusSuccess {
		t.Errorf("run must continue after AUTH_FAILED when abort is off: %+v", rows[1])
	}
}
