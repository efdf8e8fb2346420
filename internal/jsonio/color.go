package jsonio

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/passbi/transitcatalogue/internal/render"
)

// DecodeColor decodes one of the three wire shapes a color can take: a
// JSON string (named color), a 3-element array of 0-255 integers (rgb),
// or a 4-element array of 0-255 integers plus a float alpha (rgba). Any
// other shape is InvalidSettings, matching the original's json_reader
// rejecting malformed colors at read time rather than render time.
func DecodeColor(raw json.RawMessage) (render.Color, error) {
	if len(raw) == 0 {
		return render.Color{}, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return render.Named(asString), nil
	}

	var asArray []float64
	if err := json.Unmarshal(raw, &asArray); err != nil {
		return render.Color{}, fmt.Errorf("%w: color must be a string or a 3/4-element array", render.ErrInvalidSettings)
	}

	switch len(asArray) {
	case 3:
		return render.RGB(byte(asArray[0]), byte(asArray[1]), byte(asArray[2])), nil
	case 4:
		return render.RGBA(byte(asArray[0]), byte(asArray[1]), byte(asArray[2]), asArray[3]), nil
	default:
		return render.Color{}, fmt.Errorf("%w: color array must have length 3 or 4, got %d", render.ErrInvalidSettings, len(asArray))
	}
}

// DecodeRenderSettings converts the wire shape into the domain
// RenderSettings, decoding colors and running Validate before returning.
func DecodeRenderSettings(w RenderSettingsJSON) (render.RenderSettings, error) {
	underlayer, err := DecodeColor(w.UnderlayerColor)
	if err != nil {
		return render.RenderSettings{}, err
	}

	palette := make([]render.Color, len(w.ColorPalette))
	for i, raw := range w.ColorPalette {
		c, err := DecodeColor(raw)
		if err != nil {
			return render.RenderSettings{}, err
		}
		palette[i] = c
	}

	settings := render.RenderSettings{
		Width:             w.Width,
		Height:            w.Height,
		Padding:           w.Padding,
		LineWidth:         w.LineWidth,
		StopRadius:        w.StopRadius,
		BusLabelFontSize:  w.BusLabelFontSize,
		BusLabelOffset:    render.Offset{DX: w.BusLabelOffset[0], DY: w.BusLabelOffset[1]},
		StopLabelFontSize: w.StopLabelFontSize,
		StopLabelOffset:   render.Offset{DX: w.StopLabelOffset[0], DY: w.StopLabelOffset[1]},
		UnderlayerColor:   underlayer,
		UnderlayerWidth:   w.UnderlayerWidth,
		ColorPalette:      palette,
	}
	if err := render.Validate(settings); err != nil {
		return render.RenderSettings{}, err
	}
	return settings, nil
}
