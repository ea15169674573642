// Package clm implements the session-cookie-authenticated client for
// the internal contract lifecycle API: cooperation and chat lookups.
package clm

import (
	"context"
	"log/slog"
	"net/url"

	"contract-chat-mapping/internal/core/domain"
	"contract-chat-mapping/internal/infra/httpx"
)

const (
	cooperationPath = "/clm/api/workflow/composition/contractAndTask"
	chatPath        = "/clm/api/cooperation/info"
)

type cooperationResponse struct {
	Data struct {
		Contract struct {
			ContractInfo struct {
				CooperationID string `json:"cooperationId"`
			} `json:"contractInfo"`
		} `json:"contract"`
	} `json:"data"`
}

type chatResponse struct {
	Data struct {
		OpenChatID string `json:"openChatId"`
	} `json:"data"`
}

// Client performs cookie-authenticated lookups against the internal
// API.
type Client struct {
	http    *httpx.Client
	baseURL string
	session string
	log     *slog.Logger
}

// NewClient builds a CLM client for the given base URL and session
// cookie.
func NewClient(client *httpx.Client, baseURL, sessionCookie string, log *slog.Logger) *Client {
	return &Client{http: client, baseURL: baseURL, session: sessionCookie, log: log}
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Accept": "application/json",
		"Cookie": "session=" + c.session,
	}
}

// CooperationID resolves a contract id to its cooperation id. A 2xx
// response without a cooperation id classifies as NO_COOPERATION.
func (c *Client) CooperationID(ctx context.Context, contractID string) domain.StageResult {
	query := url.Values{}
	query.Set("contractId", contractID)
	query.Set("withDocVersion", "true")

	resp, err := c.http.Get(ctx, "contract_info", c.baseURL+cooperationPath, c.headers(), query)
	if err != nil {
		return domain.StageFail(domain.StatusUnknownError, 0, "", err.Error())
	}

	if resp.Status >= 200 && resp.Status < 300 {
		var body cooperationResponse
		if err := resp.DecodeJSON(&body); err != nil {
			return domain.StageFail(domain.StatusUnknownError, resp.Retries, "", "malformed response")
		}
		if id := body.Data.Contract.ContractInfo.CooperationID; id != "" {
			return domain.StageOK(id, resp.Retries)
		}
		return domain.MissingValue(domain.StatusNoCooperation, resp.Retries)
	}
	return domain.ClassifyHTTPFail(resp.Status, resp.Retries)
}

// OpenChatID resolves a cooperation id to its chat group id. A 2xx
// response without a chat id classifies as NO_CHAT_GROUP.
func (c *Client) OpenChatID(ctx context.Context, cooperationID string) domain.StageResult {
	query := url.Values{}
	query.Set("cooperationId", cooperationID)

	resp, err := c.http.Get(ctx, "cooperation_info", c.baseURL+chatPath, c.headers(), query)
	if err != nil {
		return domain.StageFail(domain.StatusUnknownError, 0, "", err.Error())
	}

	if resp.Status >= 200 && resp.Status < 300 {
		var body chatResponse
		if err := resp.DecodeJSON(&body); err != nil {
			return domain.StageFail(domain.StatusUnknownError, resp.Retries, "", "malformed response")
		}
		if id := body.Data.OpenChatID; id != "" {
			return domain.StageOK(id, resp.Retries)
		}
		return domain.MissingValue(domain.StatusNoChatGroup, resp.Retries)
	}
	return domain.ClassifyHTTPFail(resp.Status, resp.Retries)
}
