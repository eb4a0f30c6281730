package usage

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func TestExportUTF8HasBOMAndRows(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(sampleStore())
	rec, err := svc.CheckOut(ctx, checkOut(201, 1, "Student", 301, "2025-03-01"))
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, CheckInRequest{UsageID: rec.UsageID, ReturnedOn: strp("2025-03-03")})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportUsage(ctx, &buf, Filter{}, EncodingUTF8))
	require.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, []string{"1", rec.UsageULID, "201", "Student", "1", "301", "2025-03-01", "2025-03-03", ""}, rows[1])
}

func TestExportShiftJIS(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(sampleStore())
	req := checkOut(202, 101, "Faculty", 302, "2025-03-02")
	req.Note = strp("部室で使用")
	_, err := svc.CheckOut(ctx, req)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportUsage(ctx, &buf, Filter{}, EncodingShiftJIS))
	assert.False(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "部室で使用")
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{"": EncodingUTF8, "UTF-8": EncodingUTF8, "sjis": EncodingShiftJIS, "Shift_JIS": EncodingShiftJIS} {
		got, err := ParseEncoding(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseEncoding("latin1")
	assert.Error(t, err)
}
