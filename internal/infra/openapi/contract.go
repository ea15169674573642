package openapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"contract-chat-mapping/internal/core/domain"
	"contract-chat-mapping/internal/infra/httpx"
)

// Business codes embedded in search responses, distinct from the HTTP
// status itself.
const (
	bizCodeAuthInvalid      = 99991663
	bizCodeAppRateLimited   = 99991400
	bizCodeTenantRateLimit  = 9499
	bizCodeContractNotFound = 110107
)

const searchPageSize = 50

type searchRequest struct {
	PageSize       int    `json:"page_size"`
	ContractNumber string `json:"contract_number"`
}

type searchResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Items []struct {
			ContractID string `json:"contract_id"`
		} `json:"items"`
	} `json:"data"`
}

type errorEnvelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// ContractClient resolves contract numbers to contract ids via the
// bearer-authenticated search endpoint.
type ContractClient struct {
	http   *httpx.Client
	tokens *TokenSource
	url    string
	log    *slog.Logger
}

// NewContractClient builds a search client on top of the shared
// transport and token cache.
func NewContractClient(client *httpx.Client, tokens *TokenSource, baseURL string, log *slog.Logger) *ContractClient {
	return &ContractClient{http: client, tokens: tokens, url: baseURL + searchPath, log: log}
}

// SearchContractID looks up the contract id for a contract number.
//
// Business-level rate limiting (codes 99991400 and 9499) gets its own
// backoff loop on top of the transport's HTTP-level retries. The two
// attempt budgets are tracked separately and summed into the reported
// retry figure.
func (c *ContractClient) SearchContractID(ctx context.Context, contractNumber string) domain.StageResult {
	policy := c.http.Retryer().Policy()
	httpRetries := 0
	bizAttempts := 0

	for {
		retries := httpRetries + bizAttempts

		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.log.Warn("token issuance failed", "error", err)
			return domain.StageFail(domain.StatusAuthFailed, retries, "", "")
		}

		resp, err := c.http.PostJSON(ctx, "contract_search", c.url, map[string]string{
			"Authorization": "Bearer " + token,
		}, searchRequest{PageSize: searchPageSize, ContractNumber: contractNumber})
		if err != nil {
			return domain.StageFail(domain.StatusUnknownError, retries, "", err.Error())
		}
		httpRetries += resp.Retries
		retries = httpRetries + bizAttempts

		if resp.Status >= 200 && resp.Status < 300 {
			var body searchResponse
			if err := resp.DecodeJSON(&body); err != nil {
				return domain.StageFail(domain.StatusUnknownError, retries, "", "malformed response")
			}

			switch body.Code {
			case 0:
				// fall through to the item check
			case bizCodeAuthInvalid:
				return domain.StageFail(domain.StatusAuthFailed, retries, strconv.Itoa(body.Code), body.Msg)
			case bizCodeAppRateLimited, bizCodeTenantRateLimit:
				if bizAttempts >= policy.MaxRetries {
					return domain.StageFail(domain.StatusRetryExceeded, retries, strconv.Itoa(body.Code), body.Msg)
				}
				select {
				case <-ctx.Done():
					return domain.StageFail(domain.StatusRetryExceeded, retries, strconv.Itoa(body.Code), body.Msg)
				case <-time.After(policy.Backoff(bizAttempts)):
				}
				bizAttempts++
				continue
			default:
				return domain.StageFail(domain.StatusUnknownError, retries, strconv.Itoa(body.Code), body.Msg)
			}

			if len(body.Data.Items) > 0 && body.Data.Items[0].ContractID != "" {
				return domain.StageOK(body.Data.Items[0].ContractID, retries)
			}
			return domain.MissingValue(domain.StatusNotFoundContract, retries)
		}

		var env errorEnvelope
		if json.Unmarshal(resp.Body, &env) == nil && env.Code != 0 {
			switch env.Code {
			case bizCodeContractNotFound:
				return domain.StageFail(domain.StatusNotFoundContract, retries, strconv.Itoa(env.Code), env.Msg)
			case bizCodeAuthInvalid:
				return domain.StageFail(domain.StatusAuthFailed, retries, strconv.Itoa(env.Code), env.Msg)
			default:
				return domain.StageFail(domain.StatusUnknownError, retries, strconv.Itoa(env.Code), env.Msg)
			}
		}

		return domain.ClassifyHTTPFail(resp.Status, retries)
	}
}
