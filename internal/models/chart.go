package models

import "encoding/json"

// ChartSpec is the declarative chart description handed to the charting
// capability. Its JSON form is what Chart.js expects as its config object.
type ChartSpec struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor Colors    `json:"backgroundColor,omitempty"`
	BorderColor     Colors    `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
}

// Colors marshals as a bare string when it holds a single color, which Chart.js
// applies to every element of the dataset.
type Colors []string

func (c Colors) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

type ChartOptions struct {
	Responsive bool                  `json:"responsive"`
	Scales     map[string]ChartScale `json:"scales,omitempty"`
	Plugins    ChartPlugins          `json:"plugins"`
}

type ChartScale struct {
	Stacked bool       `json:"stacked"`
	Title   ChartTitle `json:"title"`
}

type ChartPlugins struct {
	Legend ChartLegend `json:"legend"`
	Title  ChartTitle  `json:"title"`
}

type ChartLegend struct {
	Position string `json:"position"`
}

type ChartTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}
