package usage

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"equipment-tracker/internal/platform/apierr"
)

type Encoding string

const (
	EncodingUTF8     Encoding = "utf8"
	EncodingShiftJIS Encoding = "sjis"
)

func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf8", "utf-8":
		return EncodingUTF8, nil
	case "sjis", "shift_jis", "shift-jis":
		return EncodingShiftJIS, nil
	}
	return "", apierr.ErrInvalid("encoding must be utf8 or sjis")
}

var exportHeader = []string{
	"usage_id", "usage_ulid", "equipment_id", "holder_type", "holder_id",
	"location_id", "checked_out_on", "returned_on", "note",
}

// Excel で文字化けしないよう UTF-8 は BOM 付き
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportUsage writes the ledger rows matching f as CSV.
func (s *Service) ExportUsage(ctx context.Context, w io.Writer, f Filter, enc Encoding) error {
	var out io.Writer = w
	var closer io.Closer
	switch enc {
	case EncodingShiftJIS:
		// Shift_JIS にない文字は "?" に置き換える
		tw := transform.NewWriter(w, encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()))
		out, closer = tw, tw
	default:
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	err := s.store.EachUsage(ctx, f, func(u *Usage) error {
		returned := ""
		if u.ReturnedOn.Valid {
			returned = u.ReturnedOn.Time.Format(DateLayout)
		}
		return cw.Write([]string{
			strconv.FormatUint(u.UsageID, 10),
			u.UsageULID,
			strconv.FormatUint(u.EquipmentID, 10),
			string(u.HolderType),
			strconv.FormatUint(u.HolderID, 10),
			strconv.FormatUint(u.LocationID, 10),
			u.CheckedOutOn.Format(DateLayout),
			returned,
			u.Note.String,
		})
	})
	if err != nil {
		return apierr.FromStorage(err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if closer != nil {
		return closer.Close()
	}
	return nil
}
