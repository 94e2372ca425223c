// Package report captures OMS fill-report screenshots.
package report

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is one query parameter. The dashboard is sensitive to parameter
// order, so the set is carried as a slice rather than a map.
type Param struct {
	Key   string
	Value string
}

// baseParams is the fixed parameter set for the fullscreen fill report:
// which plot groups to draw, their bands, and their lines.
func baseParams() []Param {
	return []Param{
		{"stable_beams", "true"},
		{"props.21748_12648.plots", "Delivered lumi|Recorded lumi"},
		{"props.21748_12648.plotbands", "downtimes"},
		{"props.21748_12648.plotlines", "run_starts|stable_beams"},
		{"props.21847_21846.plots", "B1orB2|Intensity beam 1|Intensity beam 2|beam energy|vertical crossing angle|beta* Y|beta* X"},
		{"props.21847_21846.plotbands", "downtimes"},
		{"props.21847_21846.plotlines", "run_starts|stable_beams"},
	}
}

// BuildReportURL composes the per-fill report URL from the fixed parameter
// set plus cms_fill.
func BuildReportURL(baseURL string, fillNumber int) string {
	params := append(baseParams(), Param{"cms_fill", strconv.Itoa(fillNumber)})

	var sb strings.Builder
	sb.WriteString(baseURL)
	for i, p := range params {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(encodeComponent(p.Key))
		sb.WriteByte('=')
		sb.WriteString(encodeComponent(p.Value))
	}
	return sb.String()
}

// encodeComponent percent-encodes a query component but keeps '|' literal —
// the dashboard uses it as a list separator and does not accept %7C.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%7C", "|")
}
