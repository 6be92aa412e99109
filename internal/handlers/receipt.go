package handlers

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"mesa/internal/models"

	"github.com/jung-kurt/gofpdf"
)

const (
	receiptWidth  = 80.0 // thermal printer roll, mm
	receiptMargin = 4.0
)

// renderReceipt writes a single-column receipt for order to w.
func renderReceipt(w io.Writer, restaurant *models.Restaurant, order *models.Order) error {
	height := 90.0 + float64(len(order.Lines))*10
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: receiptWidth, Ht: height},
	})
	pdf.SetMargins(receiptMargin, receiptMargin, receiptMargin)
	pdf.SetAutoPageBreak(true, receiptMargin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	content := receiptWidth - 2*receiptMargin

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(content, 6, tr(restaurant.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	if restaurant.Address != nil {
		pdf.CellFormat(content, 4, tr(*restaurant.Address), "", 1, "C", false, 0, "")
	}
	if restaurant.Phone != nil {
		pdf.CellFormat(content, 4, tr(*restaurant.Phone), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(content, 8, order.Number, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(content, 4, order.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"), "", 1, "C", false, 0, "")
	pdf.CellFormat(content, 4, tr(deliveryLine(order)), "", 1, "C", false, 0, "")
	pdf.CellFormat(content, 4, tr("Customer: "+order.CustomerName), "", 1, "L", false, 0, "")
	pdf.Ln(1)
	pdf.Line(receiptMargin, pdf.GetY(), receiptWidth-receiptMargin, pdf.GetY())
	pdf.Ln(1)

	for _, line := range order.Lines {
		name := line.ProductID.String()[:8]
		if line.Product != nil {
			name = line.Product.Name
		}
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(content-20, 5, tr(fmt.Sprintf("%dx %s", line.Quantity, name)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 5, line.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
		if extras := customizationText(line.Customizations); extras != "" {
			pdf.SetFont("Arial", "I", 7)
			pdf.CellFormat(content, 3.5, tr("  "+extras), "", 1, "L", false, 0, "")
		}
		if line.Note != nil {
			pdf.SetFont("Arial", "I", 7)
			pdf.CellFormat(content, 3.5, tr("  "+*line.Note), "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(1)
	pdf.Line(receiptMargin, pdf.GetY(), receiptWidth-receiptMargin, pdf.GetY())
	pdf.Ln(1)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(content-25, 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, order.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(content, 4, fmt.Sprintf("Ready in about %d min", order.EstimatedPreparationMinutes), "", 1, "L", false, 0, "")
	if order.Notes != nil {
		pdf.MultiCell(content, 4, tr("Notes: "+*order.Notes), "", "L", false)
	}

	return pdf.Output(w)
}

func deliveryLine(order *models.Order) string {
	switch order.DeliveryMode {
	case models.DeliveryModeTable:
		if order.TableNumber != nil {
			return fmt.Sprintf("Table %d", *order.TableNumber)
		}
	case models.DeliveryModeDelivery:
		if order.DeliveryAddress != nil {
			return "Delivery: " + *order.DeliveryAddress
		}
	case "":
		return ""
	}
	mode := string(order.DeliveryMode)
	return strings.ToUpper(mode[:1]) + mode[1:]
}

func customizationText(c models.Customizations) string {
	if len(c) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := c[k].(type) {
		case bool:
			if v {
				parts = append(parts, k)
			}
		case []interface{}:
			choices := make([]string, 0, len(v))
			for _, choice := range v {
				choices = append(choices, fmt.Sprint(choice))
			}
			parts = append(parts, k+": "+strings.Join(choices, "/"))
		case nil:
		default:
			parts = append(parts, fmt.Sprintf("%s: %v", k, v))
		}
	}
	return strings.Join(parts, ", ")
}
