package georef

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"teamwear_shop/pkg/utils"
)

// DefaultBaseURL 阿根廷政府地理参考 API
const DefaultBaseURL = "https://apis.datos.gob.ar/georef/api"

// Entity 省份或城镇
type Entity struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type provincesResp struct {
	Cantidad   int      `json:"cantidad"`
	Provincias []Entity `json:"provincias"`
}

type localitiesResp struct {
	Cantidad    int      `json:"cantidad"`
	Localidades []Entity `json:"localidades"`
}

// Client georef API 客户端
type Client struct {
	http *resty.Client
}

// NewClient 创建客户端
func NewClient(baseURL string, debug bool) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: utils.NewAPIClient(baseURL, 10*time.Second, debug)}
}

// Provinces 全部省份
func (c *Client) Provinces(ctx context.Context) ([]Entity, error) {
	var out provincesResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"campos": "id,nombre",
			"orden":  "nombre",
			"max":    "100",
		}).
		SetResult(&out).
		Get("/provincias")
	if err != nil {
		return nil, fmt.Errorf("georef provinces: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("georef provinces: HTTP %d", resp.StatusCode())
	}
	return out.Provincias, nil
}

// Localities 某省份下的城镇，province 可以是名称或 ID
func (c *Client) Localities(ctx context.Context, province string) ([]Entity, error) {
	var out localitiesResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"provincia": province,
			"campos":    "id,nombre",
			"orden":     "nombre",
			"max":       "5000",
		}).
		SetResult(&out).
		Get("/localidades")
	if err != nil {
		return nil, fmt.Errorf("georef localities: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("georef localities: HTTP %d", resp.StatusCode())
	}
	return out.Localidades, nil
}
