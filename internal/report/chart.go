package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"informe/internal/core"
)

const (
	ChartWidth  = 800
	ChartHeight = 320
)

var ErrNoHistory = errors.New("no history to chart")

// Series colors.
var (
	ColorReceita   = drawing.ColorFromHex("4ade80")
	ColorDespesas  = drawing.ColorFromHex("f87171")
	ColorResultado = drawing.ColorFromHex("60a5fa")
)

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

func brDayFormatter(v interface{}) string {
	switch t := v.(type) {
	case float64:
		return chart.TimeFromFloat64(t).UTC().Format("02/01")
	case time.Time:
		return t.Format("02/01")
	}
	return ""
}

func reaisFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("R$ %.0f", f)
	}
	return ""
}

// Chart draws Receita, Despesas and Resultado per day as a PNG line chart.
// Entries must be sorted by date.
func Chart(w io.Writer, entries []core.HistoryEntry) error {
	if len(entries) == 0 {
		return ErrNoHistory
	}

	times := make([]time.Time, len(entries))
	receita := make([]float64, len(entries))
	despesas := make([]float64, len(entries))
	resultado := make([]float64, len(entries))
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for i, e := range entries {
		times[i] = e.Date.Time
		receita[i] = e.Receita.Float()
		despesas[i] = e.Despesas.Float()
		resultado[i] = e.Resultado.Float()
		for _, v := range []float64{receita[i], despesas[i], resultado[i]} {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}

	// go-chart needs a non-zero x delta: pad a single day to two points.
	if len(times) == 1 {
		times = append(times, times[0].AddDate(0, 0, 1))
		receita = append(receita, receita[0])
		despesas = append(despesas, despesas[0])
		resultado = append(resultado, resultado[0])
	}

	// Flat data still needs a y range to draw.
	if maxY-minY < 1 {
		minY, maxY = minY-1, maxY+1
	}
	if minY > 0 {
		minY = 0
	}

	ch := chart.Chart{
		Width:      ChartWidth,
		Height:     ChartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			ValueFormatter: brDayFormatter,
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(times[0]),
				Max: chart.TimeToFloat64(times[len(times)-1]),
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: reaisFormatter,
			Range:          &chart.ContinuousRange{Min: minY, Max: maxY},
		},
		Series: []chart.Series{
			chart.TimeSeries{Name: "Receita", XValues: times, YValues: receita, Style: lineStyle(ColorReceita)},
			chart.TimeSeries{Name: "Despesas", XValues: times, YValues: despesas, Style: lineStyle(ColorDespesas)},
			chart.TimeSeries{Name: "Resultado", XValues: times, YValues: resultado, Style: lineStyle(ColorResultado)},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// ChartPNG is Chart into a byte slice.
func ChartPNG(entries []core.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := Chart(&buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
