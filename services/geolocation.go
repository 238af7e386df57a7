package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// GeolocationService resolves a source IP to a coarse "City, Region, Country"
// string for the login audit trail. Lookups go through ip-api.com and are
// cached in redis so repeat logins from the same address stay cheap.
type GeolocationService struct {
	appContext.DefaultService

	httpClient  *http.Client
	apiURL      string
	cacheExpiry time.Duration

	redisSvc *RedisService
}

const GEOLOCATION_SVC = "geolocation_svc"

func (svc GeolocationService) Id() string {
	return GEOLOCATION_SVC
}

func (svc *GeolocationService) Configure(ctx *appContext.Context) error {
	svc.httpClient = &http.Client{
		Timeout: 10 * time.Second,
	}
	svc.apiURL = "http://ip-api.com/json"
	svc.cacheExpiry = 24 * time.Hour
	return svc.DefaultService.Configure(ctx)
}

func (svc *GeolocationService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// LocationByIP never fails the caller: lookup problems degrade to "Unknown".
func (svc *GeolocationService) LocationByIP(ip string) string {
	if ip == "" || ip == "127.0.0.1" || ip == "::1" {
		return "Local"
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("geolocation:%s", ip)

	if svc.redisSvc != nil {
		cached, err := svc.redisSvc.Get(ctx, cacheKey)
		if err == nil && cached != "" {
			return cached
		}
	}

	url := fmt.Sprintf("%s/%s?fields=status,country,regionName,city", svc.apiURL, ip)

	resp, err := svc.httpClient.Get(url)
	if err != nil {
		log.WithError(err).WithField("ip", ip).Warn("geolocation lookup failed")
		return "Unknown"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).WithField("ip", ip).Warn("geolocation API returned non-200 status")
		return "Unknown"
	}

	var result struct {
		Status     string `json:"status"`
		Country    string `json:"country"`
		RegionName string `json:"regionName"`
		City       string `json:"city"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.WithError(err).WithField("ip", ip).Warn("failed to decode geolocation response")
		return "Unknown"
	}

	if result.Status != "success" {
		return "Unknown"
	}

	location := ""
	for _, part := range []string{result.City, result.RegionName, result.Country} {
		if part == "" {
			continue
		}
		if location != "" {
			location += ", "
		}
		location += part
	}

	if location == "" {
		return "Unknown"
	}

	if svc.redisSvc != nil {
		if err := svc.redisSvc.Set(ctx, cacheKey, location, svc.cacheExpiry); err != nil {
			log.WithError(err).WithField("ip", ip).Warn("failed to cache geolocation result")
		}
	}

	return location
}

func (svc *GeolocationService) ClearCache(ip string) error {
	ctx := context.Background()
	return svc.redisSvc.Delete(ctx, fmt.Sprintf("geolocation:%s", ip))
}
