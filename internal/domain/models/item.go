package models

import "time"

// TimestampLayout is the wall-clock format stored in the registry file.
const TimestampLayout = "2006-01-02 15:04:05"

// Header is the fixed column order of the registry CSV. The file always
// carries this header row, even when no items have been recorded yet.
var Header = []string{"Item_ID", "Type", "Text", "Timestamp", "Location"}

// Provenance tags for the Type column.
const (
	TypeBarcode = "barcode"
	TypeOCR     = "ocr"
)

// ItemRecord is one tracked item. A record is written the first time an ID
// is observed and never mutated afterwards.
type ItemRecord struct {
	ItemID    string `json:"item_id"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Location  string `json:"location"`
}

// NewItemRecord builds a record stamped with the provided capture time.
func NewItemRecord(itemID, itemType, text, location string, capturedAt time.Time) ItemRecord {
	return ItemRecord{
		ItemID:    itemID,
		Type:      itemType,
		Text:      text,
		Timestamp: capturedAt.Format(TimestampLayout),
		Location:  location,
	}
}

// Row converts the record to its CSV representation, in Header order.
func (r ItemRecord) Row() []string {
	return []string{r.ItemID, r.Type, r.Text, r.Timestamp, r.Location}
}

// ItemFromRow maps a CSV row back to a record. Short rows are padded so a
// hand-edited file with trailing columns missing still loads.
func ItemFromRow(row []string) ItemRecord {
	padded := make([]string, len(Header))
	copy(padded, row)
	return ItemRecord{
		ItemID:    padded[0],
		Type:      padded[1],
		Text:      padded[2],
		Timestamp: padded[3],
		Location:  padded[4],
	}
}
