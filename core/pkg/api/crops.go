package api

import (
	"context"
	"net/http"
)

// HealthStatus is the NDVI-derived health label of a plot
type HealthStatus string

const (
	HealthExcellent HealthStatus = "Excellent"
	HealthHealthy   HealthStatus = "Healthy"
	HealthAtRisk    HealthStatus = "At Risk"
	HealthPoor      HealthStatus = "Poor"
)

// RiskLevel is the backend's overall risk assessment of a plot
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// CropData is one monitored plot
type CropData struct {
	ID              int          `json:"id"`
	FarmerID        string       `json:"farmerId"`
	FarmerName      string       `json:"farmerName"`
	Location        string       `json:"location"`
	Crop            string       `json:"crop"`
	NDVIValue       float64      `json:"ndviValue"`
	SoilMoisture    float64      `json:"soilMoisture"`
	HealthStatus    HealthStatus `json:"healthStatus"`
	RiskLevel       RiskLevel    `json:"riskLevel"`
	LastUpdated     string       `json:"lastUpdated"`
	Recommendations []string     `json:"recommendations"`
	Area            string       `json:"area"`
}

// CropSource provides crop monitoring records
type CropSource interface {
	MonitoringData(ctx context.Context) ([]CropData, error)
	FarmerCrops(ctx context.Context, farmerID string) ([]CropData, error)
}

// MonitoringData returns every monitored plot
func (c *Client) MonitoringData(ctx context.Context) ([]CropData, error) {
	var resp Response[[]CropData]
	if err := c.do(ctx, http.MethodGet, nil, &resp, "crops", "monitoring"); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// FarmerCrops returns the plots of one farmer
func (c *Client) FarmerCrops(ctx context.Context, farmerID string) ([]CropData, error) {
	var resp Response[[]CropData]
	if err := c.do(ctx, http.MethodGet, nil, &resp, "crops", "farmer", farmerID); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Summary counts plots by health status and risk level
type Summary struct {
	Total    int                  `json:"total" yaml:"total"`
	ByHealth map[HealthStatus]int `json:"byHealth" yaml:"byHealth"`
	ByRisk   map[RiskLevel]int    `json:"byRisk" yaml:"byRisk"`
	// AverageNDVI is zero when there are no plots
	AverageNDVI float64 `json:"averageNdvi" yaml:"averageNdvi"`
}

// Summarize aggregates monitoring records for display
func Summarize(data []CropData) Summary {
	s := Summary{
		Total:    len(data),
		ByHealth: map[HealthStatus]int{},
		ByRisk:   map[RiskLevel]int{},
	}
	var ndvi float64
	for _, d := range data {
		s.ByHealth[d.HealthStatus]++
		s.ByRisk[d.RiskLevel]++
		ndvi += d.NDVIValue
	}
	if len(data) > 0 {
		s.AverageNDVI = ndvi / float64(len(data))
	}
	return s
}

var _ CropSource = (*Client)(nil)
