package export

import (
	"errors"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const (
	titleHeight = 10
	rowHeight   = 8
	fontSize    = 8
)

var (
	titleCell  = &props.Cell{BackgroundColor: &props.BlackColor, BorderType: border.Left | border.Right}
	headerCell = &props.Cell{BackgroundColor: &props.WhiteColor, BorderType: border.Bottom}
	evenCell   = &props.Cell{BackgroundColor: &props.Color{Red: 230, Green: 230, Blue: 230}, BorderType: border.Left | border.Right}
	oddCell    = &props.Cell{BackgroundColor: &props.WhiteColor, BorderType: border.Left | border.Right}
)

// PDF renders screen tables as landscape A4 documents.
type PDF struct{}

// Render implements screens.Exporter. Every column gets the same width.
func (PDF) Render(title string, headers []string, rows [][]string) ([]byte, error) {
	if len(headers) == 0 {
		return nil, errors.New("export needs at least one column")
	}
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(12).
		WithRightMargin(10).
		WithPageNumber().
		WithMaxGridSize(len(headers)).
		Build()
	m := maroto.New(cfg)

	m.AddRow(titleHeight,
		text.NewCol(len(headers), title, props.Text{
			Size:  14,
			Align: align.Center,
			Top:   2,
			Style: fontstyle.Bold,
			Color: &props.WhiteColor,
		}).WithStyle(titleCell),
	)
	m.AddRows(tableRow(headers, headerCell, fontstyle.Bold))
	for i, r := range rows {
		cell := oddCell
		if i&1 == 0 {
			cell = evenCell
		}
		m.AddRows(tableRow(pad(r, len(headers)), cell, fontstyle.Normal))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func tableRow(values []string, cell *props.Cell, style fontstyle.Type) core.Row {
	cols := make([]core.Col, 0, len(values))
	for _, v := range values {
		cols = append(cols, text.NewCol(1, v, props.Text{
			Size:  fontSize,
			Style: style,
			Top:   2,
			Left:  1,
			Right: 1,
		}).WithStyle(cell))
	}
	return row.New(rowHeight).Add(cols...)
}

// pad fits a row to the header width.
func pad(r []string, n int) []string {
	if len(r) == n {
		return r
	}
	out := make([]string, n)
	copy(out, r)
	return out
}
