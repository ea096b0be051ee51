package normalizer

import (
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// NormalizePixel converts a raw pixel-tracking audit row, or returns nil when raw is not an object
func NormalizePixel(raw interface{}) *domain.PixelResult {
	r, ok := asRecord(raw)
	if !ok {
		return nil
	}

	return &domain.PixelResult{
		PixelsDetected:  detectedPixels(r["pixels_detected"]),
		Events:          pixelEvents(r["events"]),
		NetworkTimeline: networkTimeline(r["network_timeline"]),
	}
}

// detectedPixels accepts pixel objects or bare pixel names
func detectedPixels(v interface{}) []domain.DetectedPixel {
	items := decodeList(v)
	out := make([]domain.DetectedPixel, 0, len(items))
	for _, item := range items {
		if name, ok := item.(string); ok {
			out = append(out, domain.DetectedPixel{Name: name, Detected: true})
			continue
		}
		r, ok := asRecord(item)
		if !ok {
			continue
		}
		out = append(out, domain.DetectedPixel{
			Name:     str(r, "name", "platform"),
			PixelID:  str(r, "pixel_id", "pixelId", "id"),
			Platform: str(r, "platform", "type"),
			Detected: boolean(r, true, "detected"),
		})
	}
	return out
}

func pixelEvents(v interface{}) []domain.PixelEvent {
	items := records(decodeList(v))
	out := make([]domain.PixelEvent, 0, len(items))
	for _, r := range items {
		var params map[string]interface{}
		if p := decodeObject(r["params"]); len(p) > 0 {
			params = p
		}
		out = append(out, domain.PixelEvent{
			Pixel:     str(r, "pixel", "platform"),
			Event:     str(r, "event", "name"),
			Timestamp: float(r, "timestamp", "time"),
			Params:    params,
		})
	}
	return out
}

func networkTimeline(v interface{}) []domain.NetworkRequest {
	items := records(decodeList(v))
	out := make([]domain.NetworkRequest, 0, len(items))
	for _, r := range items {
		out = append(out, domain.NetworkRequest{
			URL:        str(r, "url"),
			Method:     str(r, "method"),
			Status:     int(integer(r, "status", "status_code")),
			Type:       str(r, "type", "resource_type", "resourceType"),
			StartTime:  float(r, "start_time", "startTime", "timestamp"),
			DurationMs: float(r, "duration", "duration_ms"),
		})
	}
	return out
}
