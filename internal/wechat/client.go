package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL — боевой хост WeChat API.
const DefaultBaseURL = "https://api.weixin.qq.com"

// sessionPath — путь обмена кода авторизации на сессию на API хосте.
const sessionPath = "/sns/jscode2session"

// Session — результат успешного обмена кода на сессию.
type Session struct {
	OpenID     string
	UnionID    string
	SessionKey string
}

// Client обменивает wx.login код на openid через jscode2session API.
type Client struct {
	appID      string
	secret     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента. baseURL — хост API без пути,
// путь jscode2session клиент добавляет сам.
func NewClient(appID, secret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		appID:  appID,
		secret: secret,
		apiURL: strings.TrimRight(baseURL, "/") + sessionPath,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sessionResponse struct {
	OpenID     string `json:"openid"`
	UnionID    string `json:"unionid"`
	SessionKey string `json:"session_key"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// ExchangeCode выполняет code2session запрос и возвращает полученную сессию.
// Код одноразовый: повторный обмен того же кода WeChat отклоняет.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	if c.appID == "" || c.secret == "" {
		return nil, fmt.Errorf("wechat: не заданы appid или secret")
	}
	if code == "" {
		return nil, fmt.Errorf("wechat: пустой код авторизации")
	}

	query := url.Values{}
	query.Set("appid", c.appID)
	query.Set("secret", c.secret)
	query.Set("js_code", code)
	query.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wechat: запрос code2session не выполнен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("wechat: код ответа %d", resp.StatusCode)
	}

	// WeChat возвращает ошибки с HTTP 200, признак ошибки — ненулевой errcode
	var parsed sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("wechat: не удалось разобрать ответ: %w", err)
	}

	if parsed.ErrCode != 0 {
		return nil, fmt.Errorf("wechat: ошибка %d: %s", parsed.ErrCode, parsed.ErrMsg)
	}
	if parsed.OpenID == "" {
		return nil, fmt.Errorf("wechat: ответ без openid")
	}

	return &Session{
		OpenID:     parsed.OpenID,
		UnionID:    parsed.UnionID,
		SessionKey: parsed.SessionKey,
	}, nil
}
