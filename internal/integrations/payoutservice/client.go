package payoutservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с PayoutService
// Механика списаний/возвратов (Stripe и т.п.) полностью на стороне сервиса,
// этот клиент передаёт только (bookingId, amount, reason)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента PayoutService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// ReleaseEscrow инициирует выплату удержанных средств владельцу
// Вызывается после подтверждения бронирования владельцем
func (c *Client) ReleaseEscrow(ctx context.Context, bookingID int64, amount float64, reason string) error {
	return c.send(ctx, "/internal/payouts/release", bookingID, amount, reason)
}

// RefundEscrow инициирует возврат удержанных средств арендатору
// Вызывается при отклонении, таймауте подтверждения или отмене бронирования
func (c *Client) RefundEscrow(ctx context.Context, bookingID int64, amount float64, reason string) error {
	return c.send(ctx, "/internal/payouts/refund", bookingID, amount, reason)
}

func (c *Client) send(ctx context.Context, path string, bookingID int64, amount float64, reason string) error {
	url := c.baseURL + path

	body, err := json.Marshal(PayoutRequest{
		BookingID: bookingID,
		Amount:    amount,
		Reason:    reason,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return nil
	case http.StatusUnprocessableEntity:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s", ErrRejected, string(respBody))
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}
}
