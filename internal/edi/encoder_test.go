package edi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outsourceai/edi-mapper/internal/types"
)

// sampleReceipt builds the reference receipt used throughout: two line
// items (3024 + 6000 units) on one container receipt.
func sampleReceipt() *types.Receipt {
	return &types.Receipt{
		SenderID:      "DCG",
		ReceiverID:    "9083514477",
		DocumentDate:  "20220519",
		DocumentTime:  "0800",
		ControlNumber: 1057,
		ReportType:    "F",
		ReceiptDate:   "20220516",
		ReceiptID:     "EISU9397985-21104",
		ShipmentID:    "21104",
		ContainerID:   "EISU9397985",
		PalletCount:   9,
		Parties: []types.Party{
			{Role: "WH", ID: "D7"},
		},
		References: []types.Reference{
			{Qualifier: "ZZ", Value: "EISU9397985"},
			{Qualifier: "IN", Value: "0100-128E EGLV11020001328"},
		},
		Items: []types.LineItem{
			{
				Quantity:         3024,
				Unit:             "EA",
				ProductID:        "196272171026",
				ProductQualifier: "VN",
				ProductCode:      "HCZK203-STK",
				Description:      "3PC LIFE WITH MAMMALS SHORT SET",
				Attributes: []types.Reference{
					{Qualifier: "CL", Value: "GREY"},
					{Qualifier: "SZ", Value: "PPK"},
				},
			},
			{
				Quantity:         6000,
				Unit:             "EA",
				ProductID:        "196272482689",
				ProductQualifier: "VN",
				ProductCode:      "HCZK403-STK",
				Description:      "3PC LIFE WITH MAMMALS SHORT SET",
				Attributes: []types.Reference{
					{Qualifier: "CL", Value: "GREY"},
				},
			},
		},
	}
}

func TestEncode_ReferenceReceipt(t *testing.T) {
	stream, err := Encode(sampleReceipt(), DialectStandard)
	require.NoError(t, err)

	t.Run("fixed-width ISA header", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(stream,
			"ISA*00          00          ZZ*DCG            ZZ*9083514477     220519*0800*U*00401*000001057*1*P*>~"))
	})

	t.Run("envelope segments", func(t *testing.T) {
		assert.Contains(t, stream, "GS*RE*DCG*9083514477*20220519*0800*1057*X*004010~")
		assert.Contains(t, stream, "ST*944*0001~")
		assert.Contains(t, stream, "GE*1*1057~")
		assert.True(t, strings.HasSuffix(stream, "IEA*1*000001057~"))
	})

	t.Run("receipt identification carries the quantity total", func(t *testing.T) {
		assert.Contains(t, stream, "W17*F*20220516*EISU9397985-21104*21104*EISU9397985*9*9024~")
	})

	t.Run("parties and receipt references", func(t *testing.T) {
		assert.Contains(t, stream, "N1*WH*D7~")
		assert.Contains(t, stream, "N9*ZZ*EISU9397985~")
		assert.Contains(t, stream, "N9*IN*0100-128E EGLV11020001328~")
	})

	t.Run("line item blocks in input order", func(t *testing.T) {
		first := "W07*3024*EA*196272171026*VN*HCZK203-STK~G69*3PC LIFE WITH MAMMALS SHORT SET~N9*CL*GREY~N9*SZ*PPK~"
		second := "W07*6000*EA*196272482689*VN*HCZK403-STK~G69*3PC LIFE WITH MAMMALS SHORT SET~N9*CL*GREY~"
		assert.Contains(t, stream, first)
		assert.Contains(t, stream, second)
		assert.Less(t, strings.Index(stream, first), strings.Index(stream, second))
	})

	t.Run("totals segment sums line quantities", func(t *testing.T) {
		assert.Contains(t, stream, "W14*9024~")
	})

	t.Run("SE counts ST through SE inclusive", func(t *testing.T) {
		// ST, W17, N1, 2x N9, (W07+G69+2x N9), (W07+G69+N9), W14, SE.
		assert.Contains(t, stream, "SE*14*0001~")
	})
}

func TestEncode_Deterministic(t *testing.T) {
	first, err := Encode(sampleReceipt(), DialectStandard)
	require.NoError(t, err)
	second, err := Encode(sampleReceipt(), DialectStandard)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncode_DoesNotMutateInput(t *testing.T) {
	receipt := sampleReceipt()
	receipt.ReportType = "" // force placeholder substitution
	receipt.Items[0].Unit = ""

	_, err := Encode(receipt, DialectSynapse)
	require.NoError(t, err)

	assert.Empty(t, receipt.ReportType)
	assert.Empty(t, receipt.Items[0].Unit)
	assert.Equal(t, "CL", receipt.Items[0].Attributes[0].Qualifier)
}

func TestEncode_ZeroLineItems(t *testing.T) {
	receipt := sampleReceipt()
	receipt.Items = nil
	receipt.Parties = nil
	receipt.References = nil

	stream, err := Encode(receipt, DialectStandard)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stream, "ISA*"))
	assert.Contains(t, stream, "ST*944*0001~")
	assert.Contains(t, stream, "W14*0~")
	// ST, W17, W14, SE.
	assert.Contains(t, stream, "SE*4*0001~")
	assert.True(t, strings.HasSuffix(stream, "IEA*1*000001057~"))
}

func TestEncode_SegmentTermination(t *testing.T) {
	stream, err := Encode(sampleReceipt(), DialectStandard)
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(stream, SegmentTerminator))
	for _, segment := range strings.Split(strings.TrimSuffix(stream, SegmentTerminator), SegmentTerminator) {
		assert.NotEmpty(t, segment, "double terminator in stream")
		assert.NotContains(t, segment, "\n")
	}
}

func TestEncode_SanitizesDelimiters(t *testing.T) {
	receipt := sampleReceipt()
	receipt.Items[0].Description = "3PC*LIFE~WITH>MAMMALS"

	stream, err := Encode(receipt, DialectStandard)
	require.NoError(t, err)
	assert.Contains(t, stream, "G69*3PCLIFEWITHMAMMALS~")
}

func TestEncode_PlaceholderPolicy(t *testing.T) {
	receipt := sampleReceipt()
	receipt.ReportType = ""
	receipt.ReceiptID = ""
	receipt.ShipmentID = ""
	receipt.ContainerID = ""
	receipt.ReceiptDate = ""
	receipt.Items[0].Unit = ""

	stream, err := Encode(receipt, DialectStandard)
	require.NoError(t, err)

	// Missing receipt date falls back to the document date; missing IDs
	// and codes get placeholders instead of dropped elements.
	assert.Contains(t, stream, "W17*F*20220519*UNKNOWN*UNKNOWN*UNKNOWN*9*9024~")
	assert.Contains(t, stream, "W07*3024*EA*196272171026*VN*HCZK203-STK~")
}

func TestEncode_CustomPlaceholders(t *testing.T) {
	receipt := sampleReceipt()
	receipt.ReceiptID = ""

	opts := DefaultEncodeOptions()
	opts.PlaceholderID = "NA"

	stream, err := EncodeWithOptions(receipt, DialectStandard, opts)
	require.NoError(t, err)
	assert.Contains(t, stream, "W17*F*20220516*NA*21104*EISU9397985*9*9024~")
}

func TestEncode_ValidationFailures(t *testing.T) {
	t.Run("missing quantity", func(t *testing.T) {
		receipt := sampleReceipt()
		receipt.Items[1].Quantity = 0

		_, err := Encode(receipt, DialectStandard)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quantity")
	})

	t.Run("missing product ID", func(t *testing.T) {
		receipt := sampleReceipt()
		receipt.Items[0].ProductID = ""
		receipt.Items[0].ProductCode = ""

		_, err := Encode(receipt, DialectStandard)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "product")
	})

	t.Run("malformed receipt date under standard dialect", func(t *testing.T) {
		receipt := sampleReceipt()
		receipt.ReceiptDate = "3/4/2025 4:47:26 PM"

		_, err := Encode(receipt, DialectStandard)
		require.Error(t, err)
	})
}

func TestEncode_SynapseDialect(t *testing.T) {
	t.Run("canonical attribute order", func(t *testing.T) {
		receipt := sampleReceipt()
		receipt.Items[0].Attributes = []types.Reference{
			{Qualifier: "WT", Value: "24.200"},
			{Qualifier: "CL", Value: "GREY"},
			{Qualifier: "LN", Value: "18.000"},
			{Qualifier: "SZ", Value: "PPK"},
		}

		stream, err := Encode(receipt, DialectSynapse)
		require.NoError(t, err)
		assert.Contains(t, stream, "N9*CL*GREY~N9*SZ*PPK~N9*LN*18.000~N9*WT*24.200~")
	})

	t.Run("mandated party roles get placeholders", func(t *testing.T) {
		receipt := sampleReceipt()
		receipt.Parties = nil

		stream, err := Encode(receipt, DialectSynapse)
		require.NoError(t, err)
		assert.Contains(t, stream, "N1*WH*UNKNOWN~")
		assert.Contains(t, stream, "N1*ST*UNKNOWN~")
	})

	t.Run("existing parties are kept as-is", func(t *testing.T) {
		stream, err := Encode(sampleReceipt(), DialectSynapse)
		require.NoError(t, err)
		assert.Contains(t, stream, "N1*WH*D7~")
		assert.Contains(t, stream, "N1*ST*UNKNOWN~")
	})

	t.Run("receipt dates are normalized", func(t *testing.T) {
		receipt := sampleReceipt()
		receipt.ReceiptDate = "3/4/2025 4:47:26 PM"

		stream, err := Encode(receipt, DialectSynapse)
		require.NoError(t, err)
		assert.Contains(t, stream, "W17*F*20250304*")
	})
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{in: "standard", want: DialectStandard},
		{in: "", want: DialectStandard},
		{in: "Synapse", want: DialectSynapse},
		{in: "  synapse ", want: DialectSynapse},
		{in: "other", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestVerifyStream_CatchesCorruption(t *testing.T) {
	stream, err := Encode(sampleReceipt(), DialectStandard)
	require.NoError(t, err)

	t.Run("valid stream passes", func(t *testing.T) {
		require.NoError(t, verifyStream(stream))
	})

	t.Run("broken totals", func(t *testing.T) {
		corrupted := strings.Replace(stream, "W14*9024~", "W14*9000~", 1)
		err := verifyStream(corrupted)
		require.Error(t, err)
		var encErr *EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "totals", encErr.Check)
	})

	t.Run("broken control pairing", func(t *testing.T) {
		corrupted := strings.Replace(stream, "GE*1*1057~", "GE*1*9999~", 1)
		err := verifyStream(corrupted)
		require.Error(t, err)
		var encErr *EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "control-pairing", encErr.Check)
	})

	t.Run("broken segment count", func(t *testing.T) {
		corrupted := strings.Replace(stream, "SE*14*0001~", "SE*99*0001~", 1)
		err := verifyStream(corrupted)
		require.Error(t, err)
		var encErr *EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "segment-count", encErr.Check)
	})
}
