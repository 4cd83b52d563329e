package payture

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/venom3333/CPK-GrandNode/config"
	"github.com/venom3333/CPK-GrandNode/models"
)

// Gateway command names, echoed back as the root element of each response.
const (
	CommandInit     = "Init"
	CommandGetState = "GetState"
)

// StateCharged is the gateway state meaning funds were captured.
const StateCharged = "Charged"

// StateResult is the reduced outcome of a GetState call. When Success is false
// only ErrCode is populated.
type StateResult struct {
	Success       bool
	State         string
	TransactionID string
	ErrCode       string
}

// Client talks to the Payture apim API. It holds no mutable state and is safe
// for concurrent use.
type Client struct {
	client     *resty.Client
	host       string
	merchantID string
	// password is issued alongside the merchant id but the apim commands used
	// here never ask for it
	password string
	logger   *zap.SugaredLogger
}

func NewClient(cfg *config.Config, logger *zap.SugaredLogger) *Client {
	return &Client{
		client:     resty.New().SetTimeout(cfg.RequestTimeout),
		host:       cfg.PaytureHost,
		merchantID: cfg.MerchantID,
		password:   cfg.Password,
		logger:     logger,
	}
}

// InitSession begins a hosted payment session for the order and returns the
// URL of the hosted payment page. The callbackURL keeps the {orderid} and
// {success} placeholders for the gateway to fill in on return.
//
// Any failure here is fatal for the checkout: transport errors, a gateway
// rejection, and an echoed amount that differs from the order total all abort
// before a redirect can be issued.
func (c *Client) InitSession(ctx context.Context, order *models.Order, callbackURL string) (string, error) {
	data := fmt.Sprintf("SessionType=Pay;OrderId=%s;Amount=%s;Total=%s;Url=%s",
		order.OrderGUID, StripSeparators(order.Total), order.Total.String(), callbackURL)

	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"Key":  c.merchantID,
			"Data": data,
		}).
		Post(c.host + "/apim/Init")
	if err != nil {
		return "", fmt.Errorf("failed to send Init request: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("Init request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	parsed, err := ParseResponse(resp.String())
	if err != nil {
		return "", fmt.Errorf("failed to parse Init response: %w", err)
	}
	if !parsed.Success {
		return "", fmt.Errorf("orderId %s ErrCode %s", order.ID, parsed.ErrCode)
	}
	if parsed.Name != CommandInit {
		return "", fmt.Errorf("unexpected response %q to Init command", parsed.Name)
	}

	sessionID := parsed.Attributes["SessionId"]
	amount := parsed.Attributes["Amount"]

	initAmount := StripSeparators(order.Total)
	if amount != initAmount {
		return "", fmt.Errorf("orderId %s amounts doesn't match: init %s, response %s", order.ID, initAmount, amount)
	}

	redirectURL := fmt.Sprintf("%s/apim/Pay?SessionId=%s", c.host, sessionID)
	c.logger.Infow("payment session created", "order_id", order.ID, "session_id", sessionID)

	return redirectURL, nil
}

// GetState asks the gateway for the authoritative state of a payment session.
// It is a pure query: callers decide what to do with the result.
func (c *Client) GetState(ctx context.Context, orderGUID string) (StateResult, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"Key":     c.merchantID,
			"OrderId": orderGUID,
		}).
		Post(c.host + "/apim/GetState")
	if err != nil {
		return StateResult{}, fmt.Errorf("failed to send GetState request: %w", err)
	}
	if !resp.IsSuccess() {
		return StateResult{}, fmt.Errorf("GetState request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	parsed, err := ParseResponse(resp.String())
	if err != nil {
		return StateResult{}, fmt.Errorf("failed to parse GetState response: %w", err)
	}
	if !parsed.Success {
		return StateResult{Success: false, ErrCode: parsed.ErrCode}, nil
	}
	if parsed.Name != CommandGetState {
		return StateResult{}, fmt.Errorf("unexpected response %q to GetState command", parsed.Name)
	}

	return StateResult{
		Success:       true,
		State:         parsed.Attributes["State"],
		TransactionID: parsed.Attributes["RRN"],
	}, nil
}
