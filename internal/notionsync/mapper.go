package notionsync

import (
	"github.com/dvloznov/backoffice/internal/pnl"
	"github.com/jomei/notionapi"
)

// Property names of the P&L database.
const (
	PropLine   = "Line"
	PropKey    = "Key"
	PropPeriod = "Period"
	PropAmount = "Amount"
	PropKind   = "Kind"
	PropRow    = "Row"
)

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: s},
		},
	}
}

func kindName(k pnl.Kind) string {
	switch k {
	case pnl.Formula:
		return "Subtotal"
	case pnl.Header:
		return "Header"
	default:
		return "Value"
	}
}

// LineKey identifies a statement line within a period, so re-publishing
// the same period updates pages instead of duplicating them.
func LineKey(period, key string) string {
	return period + "/" + key
}

// EntryToNotionProperties converts one statement line to page properties.
func EntryToNotionProperties(period string, e pnl.Entry) notionapi.Properties {
	amount, _ := e.Amount.Float64()
	return notionapi.Properties{
		PropLine: notionapi.TitleProperty{
			Title: richText(e.Label),
		},
		PropKey: notionapi.RichTextProperty{
			RichText: richText(LineKey(period, e.Key)),
		},
		PropPeriod: notionapi.SelectProperty{
			Select: notionapi.Option{Name: period},
		},
		PropAmount: notionapi.NumberProperty{
			Number: amount,
		},
		PropKind: notionapi.SelectProperty{
			Select: notionapi.Option{Name: kindName(e.Kind)},
		},
		PropRow: notionapi.NumberProperty{
			Number: float64(e.Row),
		},
	}
}

// extractLineKey reads the Key property of a page. Returns empty string if
// not found.
func extractLineKey(page notionapi.Page) string {
	if prop, ok := page.Properties[PropKey]; ok {
		if rt, ok := prop.(*notionapi.RichTextProperty); ok && len(rt.RichText) > 0 {
			return rt.RichText[0].PlainText
		}
	}
	return ""
}
