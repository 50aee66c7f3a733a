package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/velkozz/social-ingest/app/database"
	"github.com/velkozz/social-ingest/app/twitter"
)

func TestDiscoverRegionsTask_Execute(t *testing.T) {
	api := &mockTwitterAPI{
		locations: []twitter.RawLocation{
			{Name: "Worldwide", WOEID: 1},
			{Name: "Ottawa", WOEID: 3369},
		},
	}
	regionRepo := &mockRegionRepo{}

	task := NewDiscoverRegionsTask(JobTwitterRegions,
		&mockAccountRepo{account: &database.DeveloperAccount{Service: database.ServiceTwitter}},
		regionRepo,
		func(account *database.DeveloperAccount) TwitterAPI { return api })

	task.Start()
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(regionRepo.upserted) != 2 {
		t.Fatalf("Expected 2 regions upserted, got %d", len(regionRepo.upserted))
	}
	if regionRepo.upserted[1].WOEID != 3369 || regionRepo.upserted[1].Name != "Ottawa" {
		t.Errorf("Unexpected second region: %+v", regionRepo.upserted[1])
	}

	report := task.Report()
	if report.Stage != StageCompleted {
		t.Errorf("Expected completed stage, got %q", report.Stage)
	}
	if report.Written != 2 {
		t.Errorf("Expected 2 written in report, got %d", report.Written)
	}
}

func TestDiscoverRegionsTask_MissingCredentials(t *testing.T) {
	task := NewDiscoverRegionsTask(JobTwitterRegions,
		&mockAccountRepo{err: database.ErrNotFound},
		&mockRegionRepo{},
		func(account *database.DeveloperAccount) TwitterAPI { return &mockTwitterAPI{} })

	task.Start()
	if err := task.Execute(context.Background()); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if task.Report().Stage != StageFailed {
		t.Errorf("Expected failed stage, got %q", task.Report().Stage)
	}
}

func TestDiscoverRegionsTask_FetchFailureFails(t *testing.T) {
	regionRepo := &mockRegionRepo{}

	task := NewDiscoverRegionsTask(JobTwitterRegions,
		&mockAccountRepo{account: &database.DeveloperAccount{Service: database.ServiceTwitter}},
		regionRepo,
		func(account *database.DeveloperAccount) TwitterAPI {
			return &mockTwitterAPI{err: errors.New("connection reset")}
		})

	task.Start()
	if err := task.Execute(context.Background()); err == nil {
		t.Fatal("Expected an error")
	}
	if len(regionRepo.upserted) != 0 {
		t.Errorf("Expected no region writes after failed fetch, got %d", len(regionRepo.upserted))
	}
}
