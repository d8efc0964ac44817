// Package exifscan grades the EXIF metadata of a local image for signs of
// editing or generation.
package exifscan

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/lensline/internal/model"
	"github.com/rwcarlsen/goexif/exif"
)

// Row icons.
const (
	IconCamera   = "camera"
	IconDate     = "date"
	IconLocation = "location"
	IconSettings = "settings"
)

// maxImageBytes bounds how much of an image is read.
const maxImageBytes = 32 << 20

// editorSignatures are lowercase substrings of Software tags written by
// photo editors and image generators.
var editorSignatures = []string{
	"photoshop", "gimp", "lightroom", "affinity", "pixelmator", "snapseed",
	"facetune", "stable diffusion", "midjourney", "dall-e", "firefly", "comfyui",
}

// Inspect reads an image and returns one graded row per inspected field.
func Inspect(r io.Reader) ([]model.MetadataItem, error) {
	return InspectAt(r, time.Now())
}

// InspectAt is Inspect with capture dates judged against now.
func InspectAt(r io.Reader, now time.Time) ([]model.MetadataItem, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		slog.Debug("No usable EXIF data", "error", err)
		return []model.MetadataItem{{
			Field:   "EXIF",
			Value:   "EXIF data stripped",
			Status:  model.MetadataAnomaly,
			Tooltip: "Images straight from a camera carry EXIF data; missing data often means re-encoding",
			Icon:    IconSettings,
		}}, nil
	}

	items := []model.MetadataItem{camera(x), software(x)}
	items = append(items, captureDate(x, now))
	if loc, ok := location(x); ok {
		items = append(items, loc)
	}
	return append(items, settings(x)...), nil
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return strings.TrimSpace(tag.String())
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

func camera(x *exif.Exif) model.MetadataItem {
	mk, md := stringTag(x, exif.Make), stringTag(x, exif.Model)
	value := strings.TrimSpace(mk + " " + md)
	if mk != "" && md != "" && strings.HasPrefix(strings.ToLower(md), strings.ToLower(mk)) {
		value = md
	}

	item := model.MetadataItem{Field: "Camera", Value: value, Status: model.MetadataNormal, Icon: IconCamera}
	if mk == "" || md == "" {
		item.Status = model.MetadataWarning
		item.Tooltip = "Camera make or model is missing"
		if value == "" {
			item.Value = "Unknown"
		}
	}
	return item
}

func software(x *exif.Exif) model.MetadataItem {
	sw := stringTag(x, exif.Software)
	item := model.MetadataItem{Field: "Software", Value: sw, Status: model.MetadataNormal, Icon: IconSettings}
	if sw == "" {
		item.Value = "None"
		return item
	}

	lower := strings.ToLower(sw)
	for _, sig := range editorSignatures {
		if strings.Contains(lower, sig) {
			item.Status = model.MetadataAnomaly
			item.Tooltip = "Written by editing or generation software"
			break
		}
	}
	return item
}

func captureDate(x *exif.Exif, now time.Time) model.MetadataItem {
	item := model.MetadataItem{Field: "Date Taken", Icon: IconDate}

	taken, err := x.DateTime()
	if err != nil {
		item.Value = "Unknown"
		item.Status = model.MetadataWarning
		item.Tooltip = "No capture date recorded"
		return item
	}

	item.Value = taken.Format("2006-01-02 15:04:05")
	item.Status = model.MetadataNormal
	if taken.After(now) {
		item.Status = model.MetadataAnomaly
		item.Tooltip = "Capture date is in the future"
	}
	return item
}

func location(x *exif.Exif) (model.MetadataItem, bool) {
	lat, long, err := x.LatLong()
	if err != nil {
		return model.MetadataItem{}, false
	}
	return model.MetadataItem{
		Field:  "Location",
		Value:  fmt.Sprintf("%.5f, %.5f", lat, long),
		Status: model.MetadataNormal,
		Icon:   IconLocation,
	}, true
}

func settings(x *exif.Exif) []model.MetadataItem {
	fields := []struct {
		name  exif.FieldName
		label string
	}{
		{exif.ISOSpeedRatings, "ISO"},
		{exif.FNumber, "Aperture"},
		{exif.ExposureTime, "Exposure"},
		{exif.FocalLength, "Focal Length"},
	}

	var items []model.MetadataItem
	for _, f := range fields {
		tag, err := x.Get(f.name)
		if err != nil {
			continue
		}
		items = append(items, model.MetadataItem{
			Field:  f.label,
			Value:  strings.Trim(tag.String(), `"`),
			Status: model.MetadataNormal,
			Icon:   IconSettings,
		})
	}
	return items
}
