package dto

// GeoEntity 省份/城市
type GeoEntity struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

// GeoListResp 地理数据列表
type GeoListResp struct {
	Data []GeoEntity `json:"data"`
}
