package client

import "net/http"

// Spec declaratively describes an outbound request.
// ExpCode, when set, is the only status code treated as success.
// Query entries are set on top of any query already present in URL.
type Spec struct {
	Method      string              `json:"method"      validate:"required,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS"`
	URL         string              `json:"url"         validate:"required,http_url"`
	ExpCode     int                 `json:"expCode"     validate:"omitempty,gte=100,lte=599"`
	Query       map[string]string   `json:"query,omitempty"`
	Payload     any                 `json:"payload,omitempty"`
	ContentType string              `json:"contentType,omitempty"`
	Headers     map[string][]string `json:"headers,omitempty"`
	Cookies     []*http.Cookie      `json:"-"`
}
