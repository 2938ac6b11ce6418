package powerdnsadmin

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/larivierec/infra-modules/pkg/cloudprovider"
)

const accountsPath = "/api/v1/pdnsadmin/accounts"

func (p *Provider) ListAccounts(ctx context.Context) ([]cloudprovider.Account, error) {
	resp, err := p.client.Expect(ctx, http.MethodGet, accountsPath, nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	var accounts []cloudprovider.Account
	if err := resp.Decode(&accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *Provider) CreateAccount(ctx context.Context, payload cloudprovider.AccountPayload) (*cloudprovider.Account, error) {
	resp, err := p.client.Expect(ctx, http.MethodPost, accountsPath, payload, http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	var account cloudprovider.Account
	if err := resp.Decode(&account); err != nil {
		return nil, err
	}
	p.logger.Info("account created", "name", account.Name, "id", account.ID)
	return &account, nil
}

func (p *Provider) UpdateAccount(ctx context.Context, id int, payload cloudprovider.AccountPayload) error {
	_, err := p.client.Expect(ctx, http.MethodPut, accountPath(id), payload, http.StatusOK, http.StatusNoContent)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	p.logger.Info("account updated", "name", payload.Name, "id", id)
	return nil
}

func (p *Provider) DeleteAccount(ctx context.Context, id int) error {
	_, err := p.client.Expect(ctx, http.MethodDelete, accountPath(id), nil, http.StatusOK, http.StatusNoContent)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	p.logger.Info("account deleted", "id", id)
	return nil
}

func accountPath(id int) string {
	return accountsPath + "/" + strconv.Itoa(id)
}
