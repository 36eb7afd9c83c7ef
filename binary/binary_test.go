package binary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinywasm/tinywasm/wasm"
)

func TestDecodeModuleRejectsBadMagic(t *testing.T) {
	_, err := DecodeModule([]byte{0x00, 0x61, 0x73, 0x00, 0x01, 0x00, 0x00, 0x00})
	require.Error(t, err)
	var decErr *wasm.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, wasm.DecodeInvalidMagic, decErr.Code)
}

func TestDecodeModuleRejectsBadVersion(t *testing.T) {
	_, err := DecodeModule([]byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00})
	require.Error(t, err)
	var decErr *wasm.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, wasm.DecodeInvalidVersion, decErr.Code)
}

func TestDecodeEmptyModule(t *testing.T) {
	m, err := DecodeModule(append(append([]byte{}, magic[:]...), version[:]...))
	require.NoError(t, err)
	assert.Empty(t, m.TypeSection)
	assert.Empty(t, m.CodeSection)
}

// addOneFunction builds a minimal module exporting a function
// (i32, i32) -> i32 computing a+b, used to exercise the full
// type/function/code/export round trip.
func addOneFunction() *wasm.Module {
	ft := &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	}
	body := []wasm.Instruction{
		{Op: wasm.OpLocalGet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpLocalGet, Imm: wasm.ImmIndex{Index: 1}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32Add, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
	}
	return &wasm.Module{
		TypeSection:     []*wasm.FunctionType{ft},
		FunctionSection: []uint32{0},
		CodeSection:     []*wasm.Code{{Body: body}},
		ExportSection:   []*wasm.Export{{Name: "add", Kind: wasm.ExternKindFunc, Index: 0}},
		CustomSections:  map[string][]byte{},
	}
}

func TestRoundTripSimpleFunction(t *testing.T) {
	m := addOneFunction()
	encoded := EncodeModule(m)
	decoded, err := DecodeModule(encoded)
	require.NoError(t, err)

	require.Len(t, decoded.TypeSection, 1)
	assert.Equal(t, m.TypeSection[0].Params, decoded.TypeSection[0].Params)
	assert.Equal(t, m.TypeSection[0].Results, decoded.TypeSection[0].Results)
	require.Len(t, decoded.CodeSection, 1)
	assert.Equal(t, m.CodeSection[0].Body, decoded.CodeSection[0].Body)
	require.Len(t, decoded.ExportSection, 1)
	assert.Equal(t, "add", decoded.ExportSection[0].Name)
}

func TestRoundTripMemoryAndData(t *testing.T) {
	max := uint32(4)
	m := &wasm.Module{
		MemorySection: []*wasm.MemoryType{{Limits: wasm.Limits{Min: 1, Max: &max}}},
		DataSection: []*wasm.DataSegment{
			{
				Mode: wasm.DataModeActive,
				OffsetExpr: []wasm.Instruction{
					{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 0}, ElseIndex: -1, EndIndex: -1},
					{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
				},
				Init: []byte("hello"),
			},
		},
		CustomSections: map[string][]byte{},
	}

	decoded, err := DecodeModule(EncodeModule(m))
	require.NoError(t, err)
	require.Len(t, decoded.MemorySection, 1)
	require.NotNil(t, decoded.MemorySection[0].Limits.Max)
	assert.Equal(t, uint32(4), *decoded.MemorySection[0].Limits.Max)
	require.Len(t, decoded.DataSection, 1)
	assert.Equal(t, []byte("hello"), decoded.DataSection[0].Init)
}

func TestRoundTripElementSegmentPassive(t *testing.T) {
	m := &wasm.Module{
		TableSection: []*wasm.TableType{{ElemType: wasm.ValueTypeFuncref, Limits: wasm.Limits{Min: 2}}},
		ElementSection: []*wasm.ElementSegment{
			{
				Mode:    wasm.ElementModePassive,
				RefType: wasm.ValueTypeFuncref,
				Init: [][]wasm.Instruction{
					{
						{Op: wasm.OpRefFunc, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
						{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
					},
				},
			},
		},
		CustomSections: map[string][]byte{},
	}

	decoded, err := DecodeModule(EncodeModule(m))
	require.NoError(t, err)
	require.Len(t, decoded.ElementSection, 1)
	assert.Equal(t, wasm.ElementModePassive, decoded.ElementSection[0].Mode)
	assert.Equal(t, wasm.ValueTypeFuncref, decoded.ElementSection[0].RefType)
	require.Len(t, decoded.ElementSection[0].Init, 1)
}

func TestDecodeRejectsOutOfOrderSections(t *testing.T) {
	// code section (10) before function section (3): malformed.
	b := append([]byte{}, magic[:]...)
	b = append(b, version[:]...)
	b = append(b, byte(SectionCode), 0x01, 0x00)
	b = append(b, byte(SectionFunction), 0x01, 0x00)
	_, err := DecodeModule(b)
	require.Error(t, err)
}

func TestDecodeRejectsDuplicateSection(t *testing.T) {
	b := append([]byte{}, magic[:]...)
	b = append(b, version[:]...)
	b = append(b, byte(SectionType), 0x01, 0x00)
	b = append(b, byte(SectionType), 0x01, 0x00)
	_, err := DecodeModule(b)
	require.Error(t, err)
	var decErr *wasm.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, wasm.DecodeDuplicateSection, decErr.Code)
}

func TestDecodeRejectsFunctionCodeLengthMismatch(t *testing.T) {
	m := addOneFunction()
	m.FunctionSection = append(m.FunctionSection, 0)
	_, err := DecodeModule(EncodeModule(m))
	require.Error(t, err)
	var decErr *wasm.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, wasm.DecodeFunctionCodeMismatch, decErr.Code)
}

func TestDecodeExprResolvesIfElseEnd(t *testing.T) {
	r := newReader([]byte{
		byte(wasm.OpIf), 0x40,
		byte(wasm.OpNop),
		byte(wasm.OpElse),
		byte(wasm.OpNop),
		byte(wasm.OpEnd),
		byte(wasm.OpEnd), // terminates the enclosing expr
	})
	instrs, err := decodeExpr(r)
	require.NoError(t, err)
	require.Len(t, instrs, 6)
	assert.Equal(t, wasm.OpIf, instrs[0].Op)
	assert.Equal(t, 2, instrs[0].ElseIndex)
	assert.Equal(t, 4, instrs[0].EndIndex)
}

func TestDecodeBlockTypeMultiValue(t *testing.T) {
	// type index 5 encoded as signed LEB128.
	r := newReader([]byte{0x05})
	bt, err := decodeBlockType(r)
	require.NoError(t, err)
	assert.True(t, bt.IsTypeIndex)
	assert.Equal(t, uint32(5), bt.TypeIndex)
}

func TestDecodeV128Const(t *testing.T) {
	lanes := make([]byte, 16)
	for i := range lanes {
		lanes[i] = byte(i)
	}
	b := append([]byte{0xFD, 12}, lanes...) // v128.const
	r := newReader(b)
	op, off, err := decodeOpcode(r)
	require.NoError(t, err)
	imm, err := decodeImmediate(r, op, off)
	require.NoError(t, err)
	v, ok := imm.(wasm.ImmV128)
	require.True(t, ok)
	assert.Equal(t, byte(15), v.V[15])
}

func TestDecodeMemArgLoadInstruction(t *testing.T) {
	b := []byte{byte(wasm.OpI32Load), 0x02, 0x04}
	r := newReader(b)
	op, off, err := decodeOpcode(r)
	require.NoError(t, err)
	imm, err := decodeImmediate(r, op, off)
	require.NoError(t, err)
	ma, ok := imm.(wasm.ImmMemArg)
	require.True(t, ok)
	assert.Equal(t, uint32(2), ma.Mem.Align)
	assert.Equal(t, uint32(4), ma.Mem.Offset)
}
