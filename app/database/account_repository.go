package database

import (
	"database/sql"
	"fmt"
)

// AccountRepo reads developer API credentials. The pipeline never
// writes this table; accounts are provisioned by an administrator.
type AccountRepo struct {
	db *DB
}

var _ AccountRepository = (*AccountRepo)(nil)

func NewAccountRepository(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// GetActiveAccount returns the single active credential set for a
// service. One active account per service is assumed; when several are
// marked active the oldest wins.
func (r *AccountRepo) GetActiveAccount(service Service) (*DeveloperAccount, error) {
	var account DeveloperAccount
	var clientID, clientSecret, userAgent sql.NullString
	var apiKey, apiSecretKey, bearerToken sql.NullString
	var accessToken, accessTokenSecret sql.NullString

	err := r.db.QueryRow(`
		SELECT id, service, client_id, client_secret, user_agent,
		       api_key, api_secret_key, bearer_token,
		       access_token, access_token_secret,
		       active, created_at, updated_at
		FROM developer_accounts
		WHERE service = $1 AND active
		ORDER BY created_at
		LIMIT 1
	`, string(service)).Scan(
		&account.ID, &account.Service, &clientID, &clientSecret, &userAgent,
		&apiKey, &apiSecretKey, &bearerToken,
		&accessToken, &accessTokenSecret,
		&account.Active, &account.CreatedAt, &account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no active %s developer account: %w", service, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get developer account: %w", err)
	}

	account.ClientID = clientID.String
	account.ClientSecret = clientSecret.String
	account.UserAgent = userAgent.String
	account.APIKey = apiKey.String
	account.APISecretKey = apiSecretKey.String
	account.BearerToken = bearerToken.String
	account.AccessToken = accessToken.String
	account.AccessTokenSecret = accessTokenSecret.String

	return &account, nil
}
