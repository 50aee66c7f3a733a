package database

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func accountColumns() []string {
	return []string{
		"id", "service", "client_id", "client_secret", "user_agent",
		"api_key", "api_secret_key", "bearer_token",
		"access_token", "access_token_secret",
		"active", "created_at", "updated_at",
	}
}

func TestGetActiveAccount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	now := time.Date(2022, 1, 17, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM developer_accounts").
		WithArgs("reddit").
		WillReturnRows(sqlmock.NewRows(accountColumns()).AddRow(
			"acc-uuid", "reddit", "client-id", "client-secret", "ingest-bot/1.0",
			nil, nil, nil,
			nil, nil,
			true, now, now,
		))

	account, err := repo.GetActiveAccount(ServiceReddit)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if account.Service != ServiceReddit {
		t.Errorf("Expected reddit account, got %q", account.Service)
	}
	if account.ClientID != "client-id" || account.ClientSecret != "client-secret" {
		t.Errorf("Unexpected credentials: %+v", account)
	}
	if account.UserAgent != "ingest-bot/1.0" {
		t.Errorf("Expected user agent, got %q", account.UserAgent)
	}
	if account.BearerToken != "" {
		t.Errorf("Expected empty bearer token for null column, got %q", account.BearerToken)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestGetActiveAccount_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM developer_accounts").
		WithArgs("twitter").
		WillReturnRows(sqlmock.NewRows(accountColumns()))

	_, err := repo.GetActiveAccount(ServiceTwitter)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
