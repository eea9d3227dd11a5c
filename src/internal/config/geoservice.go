package config

import (
	"github.com/spf13/viper"
	"googlemaps.github.io/maps"
)

type GeoService struct {
	Client *maps.Client
}

func NewGeoService(viper *viper.Viper) (*GeoService, error) {
	apiKey := viper.GetString("thirdparty.google.api_key")
	if apiKey == "" {
		// distance annotation is optional; the pool works without it
		return nil, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeoService{Client: client}, nil
}
