package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type TenantReportData struct {
	TenantName  string
	TenantSlug  string
	Status      string
	GeneratedAt string

	QuotaPlan       string
	IncludedMinutes string
	UsedMinutes     string

	Licenses []LicenseRow
}

type LicenseRow struct {
	ApplicationName string
	ApplicationCode string
	Status          string
	SeatLimit       int
	SeatsUsed       int
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateTenantReport(ctx context.Context, data TenantReportData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Tenant Report", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New(data.TenantName, props.Text{Style: fontstyle.Bold}),
			text.New("Slug: "+data.TenantSlug, props.Text{Top: 5}),
			text.New("Status: "+data.Status, props.Text{Top: 9}),
		),
		col.New(6).Add(
			text.New("Generated: "+data.GeneratedAt, props.Text{Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(12, "Transcription quota", props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   2,
		}),
	)
	m.AddRow(16,
		col.New(12).Add(
			text.New("Plan: "+data.QuotaPlan, props.Text{Size: 9}),
			text.New("Included minutes: "+data.IncludedMinutes, props.Text{Size: 9, Top: 4}),
			text.New("Used minutes: "+data.UsedMinutes, props.Text{Size: 9, Top: 8}),
		),
	)

	m.AddRow(10,
		text.NewCol(12, "Licenses", props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   2,
		}),
	)

	m.AddRow(8,
		text.NewCol(4, "Application", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Code", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Status", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Seat limit", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Seats used", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, row := range data.Licenses {
		m.AddRow(8,
			text.NewCol(4, row.ApplicationName, props.Text{Size: 9}),
			text.NewCol(2, row.ApplicationCode, props.Text{Size: 9}),
			text.NewCol(2, row.Status, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", row.SeatLimit), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%d", row.SeatsUsed), props.Text{Size: 9, Align: align.Right}),
		)
	}
	if len(data.Licenses) == 0 {
		m.AddRow(8,
			text.NewCol(12, "No licenses assigned.", props.Text{Size: 9}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
