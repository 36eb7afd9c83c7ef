package wasm

// Opcode identifies a decoded instruction. Primary (single-byte)
// opcodes occupy their natural byte value (0x00-0xFB). The 0xFC
// ("misc") and 0xFD ("SIMD") prefix bytes each introduce a LEB128 u32
// secondary opcode; to keep a single flat, comparable enum we offset
// those secondary opcodes into disjoint ranges above the one-byte
// space. 0xFE is reserved and is always a decode error.
type Opcode uint32

const (
	miscPrefixBase = 0x100
	simdPrefixBase = 0x10000
)

// MiscOp maps a 0xFC-prefixed secondary opcode to its flat Opcode value.
func MiscOp(sub uint32) Opcode { return Opcode(miscPrefixBase) + Opcode(sub) }

// SimdOp maps a 0xFD-prefixed secondary opcode to its flat Opcode value.
func SimdOp(sub uint32) Opcode { return Opcode(simdPrefixBase) + Opcode(sub) }

// IsMiscPrefixed reports whether op was decoded from a 0xFC-prefixed byte.
func (op Opcode) IsMiscPrefixed() bool { return op >= miscPrefixBase && op < simdPrefixBase }

// IsSimdPrefixed reports whether op was decoded from a 0xFD-prefixed byte.
func (op Opcode) IsSimdPrefixed() bool { return op >= simdPrefixBase }

// Secondary returns the original LEB128 secondary opcode value for a
// prefixed opcode; meaningless (and unused) for an unprefixed opcode.
func (op Opcode) Secondary() uint32 {
	switch {
	case op >= simdPrefixBase:
		return uint32(op - simdPrefixBase)
	case op >= miscPrefixBase:
		return uint32(op - miscPrefixBase)
	default:
		return uint32(op)
	}
}

// Control instructions.
const (
	OpUnreachable  Opcode = 0x00
	OpNop          Opcode = 0x01
	OpBlock        Opcode = 0x02
	OpLoop         Opcode = 0x03
	OpIf           Opcode = 0x04
	OpElse         Opcode = 0x05
	OpEnd          Opcode = 0x0B
	OpBr           Opcode = 0x0C
	OpBrIf         Opcode = 0x0D
	OpBrTable      Opcode = 0x0E
	OpReturn       Opcode = 0x0F
	OpCall         Opcode = 0x10
	OpCallIndirect Opcode = 0x11
)

// Reference instructions.
const (
	OpRefNull   Opcode = 0xD0
	OpRefIsNull Opcode = 0xD1
	OpRefFunc   Opcode = 0xD2
)

// Parametric instructions.
const (
	OpDrop       Opcode = 0x1A
	OpSelect     Opcode = 0x1B
	OpSelectTyped Opcode = 0x1C
)

// Variable instructions.
const (
	OpLocalGet  Opcode = 0x20
	OpLocalSet  Opcode = 0x21
	OpLocalTee  Opcode = 0x22
	OpGlobalGet Opcode = 0x23
	OpGlobalSet Opcode = 0x24
)

// Table instructions (reference-types proposal, folded into 2.0).
const (
	OpTableGet Opcode = 0x25
	OpTableSet Opcode = 0x26
)

// Memory instructions.
const (
	OpI32Load    Opcode = 0x28
	OpI64Load    Opcode = 0x29
	OpF32Load    Opcode = 0x2A
	OpF64Load    Opcode = 0x2B
	OpI32Load8S  Opcode = 0x2C
	OpI32Load8U  Opcode = 0x2D
	OpI32Load16S Opcode = 0x2E
	OpI32Load16U Opcode = 0x2F
	OpI64Load8S  Opcode = 0x30
	OpI64Load8U  Opcode = 0x31
	OpI64Load16S Opcode = 0x32
	OpI64Load16U Opcode = 0x33
	OpI64Load32S Opcode = 0x34
	OpI64Load32U Opcode = 0x35
	OpI32Store   Opcode = 0x36
	OpI64Store   Opcode = 0x37
	OpF32Store   Opcode = 0x38
	OpF64Store   Opcode = 0x39
	OpI32Store8  Opcode = 0x3A
	OpI32Store16 Opcode = 0x3B
	OpI64Store8  Opcode = 0x3C
	OpI64Store16 Opcode = 0x3D
	OpI64Store32 Opcode = 0x3E
	OpMemorySize Opcode = 0x3F
	OpMemoryGrow Opcode = 0x40
)

// Numeric constants.
const (
	OpI32Const Opcode = 0x41
	OpI64Const Opcode = 0x42
	OpF32Const Opcode = 0x43
	OpF64Const Opcode = 0x44
)

// i32 comparisons, i64 comparisons, f32/f64 comparisons: 0x45-0x66.
const (
	OpI32Eqz Opcode = 0x45
	OpI32Eq  Opcode = 0x46
	OpI32Ne  Opcode = 0x47
	OpI32LtS Opcode = 0x48
	OpI32LtU Opcode = 0x49
	OpI32GtS Opcode = 0x4A
	OpI32GtU Opcode = 0x4B
	OpI32LeS Opcode = 0x4C
	OpI32LeU Opcode = 0x4D
	OpI32GeS Opcode = 0x4E
	OpI32GeU Opcode = 0x4F

	OpI64Eqz Opcode = 0x50
	OpI64Eq  Opcode = 0x51
	OpI64Ne  Opcode = 0x52
	OpI64LtS Opcode = 0x53
	OpI64LtU Opcode = 0x54
	OpI64GtS Opcode = 0x55
	OpI64GtU Opcode = 0x56
	OpI64LeS Opcode = 0x57
	OpI64LeU Opcode = 0x58
	OpI64GeS Opcode = 0x59
	OpI64GeU Opcode = 0x5A

	OpF32Eq Opcode = 0x5B
	OpF32Ne Opcode = 0x5C
	OpF32Lt Opcode = 0x5D
	OpF32Gt Opcode = 0x5E
	OpF32Le Opcode = 0x5F
	OpF32Ge Opcode = 0x60

	OpF64Eq Opcode = 0x61
	OpF64Ne Opcode = 0x62
	OpF64Lt Opcode = 0x63
	OpF64Gt Opcode = 0x64
	OpF64Le Opcode = 0x65
	OpF64Ge Opcode = 0x66
)

// Numeric arithmetic: 0x67-0xA6.
const (
	OpI32Clz    Opcode = 0x67
	OpI32Ctz    Opcode = 0x68
	OpI32Popcnt Opcode = 0x69
	OpI32Add    Opcode = 0x6A
	OpI32Sub    Opcode = 0x6B
	OpI32Mul    Opcode = 0x6C
	OpI32DivS   Opcode = 0x6D
	OpI32DivU   Opcode = 0x6E
	OpI32RemS   Opcode = 0x6F
	OpI32RemU   Opcode = 0x70
	OpI32And    Opcode = 0x71
	OpI32Or     Opcode = 0x72
	OpI32Xor    Opcode = 0x73
	OpI32Shl    Opcode = 0x74
	OpI32ShrS   Opcode = 0x75
	OpI32ShrU   Opcode = 0x76
	OpI32Rotl   Opcode = 0x77
	OpI32Rotr   Opcode = 0x78

	OpI64Clz    Opcode = 0x79
	OpI64Ctz    Opcode = 0x7A
	OpI64Popcnt Opcode = 0x7B
	OpI64Add    Opcode = 0x7C
	OpI64Sub    Opcode = 0x7D
	OpI64Mul    Opcode = 0x7E
	OpI64DivS   Opcode = 0x7F
	OpI64DivU   Opcode = 0x80
	OpI64RemS   Opcode = 0x81
	OpI64RemU   Opcode = 0x82
	OpI64And    Opcode = 0x83
	OpI64Or     Opcode = 0x84
	OpI64Xor    Opcode = 0x85
	OpI64Shl    Opcode = 0x86
	OpI64ShrS   Opcode = 0x87
	OpI64ShrU   Opcode = 0x88
	OpI64Rotl   Opcode = 0x89
	OpI64Rotr   Opcode = 0x8A

	OpF32Abs      Opcode = 0x8B
	OpF32Neg      Opcode = 0x8C
	OpF32Ceil     Opcode = 0x8D
	OpF32Floor    Opcode = 0x8E
	OpF32Trunc    Opcode = 0x8F
	OpF32Nearest  Opcode = 0x90
	OpF32Sqrt     Opcode = 0x91
	OpF32Add      Opcode = 0x92
	OpF32Sub      Opcode = 0x93
	OpF32Mul      Opcode = 0x94
	OpF32Div      Opcode = 0x95
	OpF32Min      Opcode = 0x96
	OpF32Max      Opcode = 0x97
	OpF32Copysign Opcode = 0x98

	OpF64Abs      Opcode = 0x99
	OpF64Neg      Opcode = 0x9A
	OpF64Ceil     Opcode = 0x9B
	OpF64Floor    Opcode = 0x9C
	OpF64Trunc    Opcode = 0x9D
	OpF64Nearest  Opcode = 0x9E
	OpF64Sqrt     Opcode = 0x9F
	OpF64Add      Opcode = 0xA0
	OpF64Sub      Opcode = 0xA1
	OpF64Mul      Opcode = 0xA2
	OpF64Div      Opcode = 0xA3
	OpF64Min      Opcode = 0xA4
	OpF64Max      Opcode = 0xA5
	OpF64Copysign Opcode = 0xA6
)

// Conversions and reinterprets: 0xA7-0xBF.
const (
	OpI32WrapI64      Opcode = 0xA7
	OpI32TruncF32S    Opcode = 0xA8
	OpI32TruncF32U    Opcode = 0xA9
	OpI32TruncF64S    Opcode = 0xAA
	OpI32TruncF64U    Opcode = 0xAB
	OpI64ExtendI32S   Opcode = 0xAC
	OpI64ExtendI32U   Opcode = 0xAD
	OpI64TruncF32S    Opcode = 0xAE
	OpI64TruncF32U    Opcode = 0xAF
	OpI64TruncF64S    Opcode = 0xB0
	OpI64TruncF64U    Opcode = 0xB1
	OpF32ConvertI32S  Opcode = 0xB2
	OpF32ConvertI32U  Opcode = 0xB3
	OpF32ConvertI64S  Opcode = 0xB4
	OpF32ConvertI64U  Opcode = 0xB5
	OpF32DemoteF64    Opcode = 0xB6
	OpF64ConvertI32S  Opcode = 0xB7
	OpF64ConvertI32U  Opcode = 0xB8
	OpF64ConvertI64S  Opcode = 0xB9
	OpF64ConvertI64U  Opcode = 0xBA
	OpF64PromoteF32   Opcode = 0xBB
	OpI32ReinterpretF32 Opcode = 0xBC
	OpI64ReinterpretF64 Opcode = 0xBD
	OpF32ReinterpretI32 Opcode = 0xBE
	OpF64ReinterpretI64 Opcode = 0xBF
)

// Sign-extension instructions: 0xC0-0xC4.
const (
	OpI32Extend8S  Opcode = 0xC0
	OpI32Extend16S Opcode = 0xC1
	OpI64Extend8S  Opcode = 0xC2
	OpI64Extend16S Opcode = 0xC3
	OpI64Extend32S Opcode = 0xC4
)

// 0xFC-prefixed secondary opcodes: saturating truncation + bulk memory/table.
const (
	OpI32TruncSatF32S Opcode = miscPrefixBase + 0
	OpI32TruncSatF32U Opcode = miscPrefixBase + 1
	OpI32TruncSatF64S Opcode = miscPrefixBase + 2
	OpI32TruncSatF64U Opcode = miscPrefixBase + 3
	OpI64TruncSatF32S Opcode = miscPrefixBase + 4
	OpI64TruncSatF32U Opcode = miscPrefixBase + 5
	OpI64TruncSatF64S Opcode = miscPrefixBase + 6
	OpI64TruncSatF64U Opcode = miscPrefixBase + 7

	OpMemoryInit Opcode = miscPrefixBase + 8
	OpDataDrop   Opcode = miscPrefixBase + 9
	OpMemoryCopy Opcode = miscPrefixBase + 10
	OpMemoryFill Opcode = miscPrefixBase + 11
	OpTableInit  Opcode = miscPrefixBase + 12
	OpElemDrop   Opcode = miscPrefixBase + 13
	OpTableCopy  Opcode = miscPrefixBase + 14
	OpTableGrow  Opcode = miscPrefixBase + 15
	OpTableSize  Opcode = miscPrefixBase + 16
	OpTableFill  Opcode = miscPrefixBase + 17
)

// 0xFD-prefixed secondary opcodes: the v128 SIMD family. Numbering
// follows the published WebAssembly SIMD proposal ordering.
const (
	OpV128Load  Opcode = simdPrefixBase + 0
	OpV128Load8x8S  Opcode = simdPrefixBase + 1
	OpV128Load8x8U  Opcode = simdPrefixBase + 2
	OpV128Load16x4S Opcode = simdPrefixBase + 3
	OpV128Load16x4U Opcode = simdPrefixBase + 4
	OpV128Load32x2S Opcode = simdPrefixBase + 5
	OpV128Load32x2U Opcode = simdPrefixBase + 6
	OpV128Load8Splat  Opcode = simdPrefixBase + 7
	OpV128Load16Splat Opcode = simdPrefixBase + 8
	OpV128Load32Splat Opcode = simdPrefixBase + 9
	OpV128Load64Splat Opcode = simdPrefixBase + 10
	OpV128Store Opcode = simdPrefixBase + 11
	OpV128Const Opcode = simdPrefixBase + 12
	OpI8x16Shuffle  Opcode = simdPrefixBase + 13
	OpI8x16Swizzle  Opcode = simdPrefixBase + 14
	OpI8x16Splat Opcode = simdPrefixBase + 15
	OpI16x8Splat Opcode = simdPrefixBase + 16
	OpI32x4Splat Opcode = simdPrefixBase + 17
	OpI64x2Splat Opcode = simdPrefixBase + 18
	OpF32x4Splat Opcode = simdPrefixBase + 19
	OpF64x2Splat Opcode = simdPrefixBase + 20

	OpI8x16ExtractLaneS Opcode = simdPrefixBase + 21
	OpI8x16ExtractLaneU Opcode = simdPrefixBase + 22
	OpI8x16ReplaceLane  Opcode = simdPrefixBase + 23
	OpI16x8ExtractLaneS Opcode = simdPrefixBase + 24
	OpI16x8ExtractLaneU Opcode = simdPrefixBase + 25
	OpI16x8ReplaceLane  Opcode = simdPrefixBase + 26
	OpI32x4ExtractLane  Opcode = simdPrefixBase + 27
	OpI32x4ReplaceLane  Opcode = simdPrefixBase + 28
	OpI64x2ExtractLane  Opcode = simdPrefixBase + 29
	OpI64x2ReplaceLane  Opcode = simdPrefixBase + 30
	OpF32x4ExtractLane  Opcode = simdPrefixBase + 31
	OpF32x4ReplaceLane  Opcode = simdPrefixBase + 32
	OpF64x2ExtractLane  Opcode = simdPrefixBase + 33
	OpF64x2ReplaceLane  Opcode = simdPrefixBase + 34

	OpI8x16Eq  Opcode = simdPrefixBase + 35
	OpI8x16Ne  Opcode = simdPrefixBase + 36
	OpI8x16LtS Opcode = simdPrefixBase + 37
	OpI8x16LtU Opcode = simdPrefixBase + 38
	OpI8x16GtS Opcode = simdPrefixBase + 39
	OpI8x16GtU Opcode = simdPrefixBase + 40
	OpI8x16LeS Opcode = simdPrefixBase + 41
	OpI8x16LeU Opcode = simdPrefixBase + 42
	OpI8x16GeS Opcode = simdPrefixBase + 43
	OpI8x16GeU Opcode = simdPrefixBase + 44

	OpI16x8Eq  Opcode = simdPrefixBase + 45
	OpI16x8Ne  Opcode = simdPrefixBase + 46
	OpI16x8LtS Opcode = simdPrefixBase + 47
	OpI16x8LtU Opcode = simdPrefixBase + 48
	OpI16x8GtS Opcode = simdPrefixBase + 49
	OpI16x8GtU Opcode = simdPrefixBase + 50
	OpI16x8LeS Opcode = simdPrefixBase + 51
	OpI16x8LeU Opcode = simdPrefixBase + 52
	OpI16x8GeS Opcode = simdPrefixBase + 53
	OpI16x8GeU Opcode = simdPrefixBase + 54

	OpI32x4Eq  Opcode = simdPrefixBase + 55
	OpI32x4Ne  Opcode = simdPrefixBase + 56
	OpI32x4LtS Opcode = simdPrefixBase + 57
	OpI32x4LtU Opcode = simdPrefixBase + 58
	OpI32x4GtS Opcode = simdPrefixBase + 59
	OpI32x4GtU Opcode = simdPrefixBase + 60
	OpI32x4LeS Opcode = simdPrefixBase + 61
	OpI32x4LeU Opcode = simdPrefixBase + 62
	OpI32x4GeS Opcode = simdPrefixBase + 63
	OpI32x4GeU Opcode = simdPrefixBase + 64

	OpF32x4Eq Opcode = simdPrefixBase + 65
	OpF32x4Ne Opcode = simdPrefixBase + 66
	OpF32x4Lt Opcode = simdPrefixBase + 67
	OpF32x4Gt Opcode = simdPrefixBase + 68
	OpF32x4Le Opcode = simdPrefixBase + 69
	OpF32x4Ge Opcode = simdPrefixBase + 70

	OpF64x2Eq Opcode = simdPrefixBase + 71
	OpF64x2Ne Opcode = simdPrefixBase + 72
	OpF64x2Lt Opcode = simdPrefixBase + 73
	OpF64x2Gt Opcode = simdPrefixBase + 74
	OpF64x2Le Opcode = simdPrefixBase + 75
	OpF64x2Ge Opcode = simdPrefixBase + 76

	OpV128Not       Opcode = simdPrefixBase + 77
	OpV128And       Opcode = simdPrefixBase + 78
	OpV128AndNot    Opcode = simdPrefixBase + 79
	OpV128Or        Opcode = simdPrefixBase + 80
	OpV128Xor       Opcode = simdPrefixBase + 81
	OpV128Bitselect Opcode = simdPrefixBase + 82
	OpV128AnyTrue   Opcode = simdPrefixBase + 83

	OpV128Load8Lane  Opcode = simdPrefixBase + 84
	OpV128Load16Lane Opcode = simdPrefixBase + 85
	OpV128Load32Lane Opcode = simdPrefixBase + 86
	OpV128Load64Lane Opcode = simdPrefixBase + 87
	OpV128Store8Lane  Opcode = simdPrefixBase + 88
	OpV128Store16Lane Opcode = simdPrefixBase + 89
	OpV128Store32Lane Opcode = simdPrefixBase + 90
	OpV128Store64Lane Opcode = simdPrefixBase + 91
	OpV128Load32Zero  Opcode = simdPrefixBase + 92
	OpV128Load64Zero  Opcode = simdPrefixBase + 93

	OpF32x4DemoteF64x2Zero Opcode = simdPrefixBase + 94
	OpF64x2PromoteLowF32x4 Opcode = simdPrefixBase + 95

	OpI8x16Abs     Opcode = simdPrefixBase + 96
	OpI8x16Neg     Opcode = simdPrefixBase + 97
	OpI8x16Popcnt  Opcode = simdPrefixBase + 98
	OpI8x16AllTrue Opcode = simdPrefixBase + 99
	OpI8x16Bitmask Opcode = simdPrefixBase + 100
	OpI8x16NarrowI16x8S Opcode = simdPrefixBase + 101
	OpI8x16NarrowI16x8U Opcode = simdPrefixBase + 102

	OpF32x4Ceil  Opcode = simdPrefixBase + 103
	OpF32x4Floor Opcode = simdPrefixBase + 104
	OpF32x4Trunc Opcode = simdPrefixBase + 105
	OpF32x4Nearest Opcode = simdPrefixBase + 106

	OpI8x16Shl    Opcode = simdPrefixBase + 107
	OpI8x16ShrS   Opcode = simdPrefixBase + 108
	OpI8x16ShrU   Opcode = simdPrefixBase + 109
	OpI8x16Add    Opcode = simdPrefixBase + 110
	OpI8x16AddSatS Opcode = simdPrefixBase + 111
	OpI8x16AddSatU Opcode = simdPrefixBase + 112
	OpI8x16Sub    Opcode = simdPrefixBase + 113
	OpI8x16SubSatS Opcode = simdPrefixBase + 114
	OpI8x16SubSatU Opcode = simdPrefixBase + 115

	OpF64x2Ceil  Opcode = simdPrefixBase + 116
	OpF64x2Floor Opcode = simdPrefixBase + 117

	OpI8x16MinS Opcode = simdPrefixBase + 118
	OpI8x16MinU Opcode = simdPrefixBase + 119
	OpI8x16MaxS Opcode = simdPrefixBase + 120
	OpI8x16MaxU Opcode = simdPrefixBase + 121

	OpF64x2Trunc Opcode = simdPrefixBase + 122

	OpI8x16AvgrU Opcode = simdPrefixBase + 123

	OpI16x8ExtaddPairwiseI8x16S Opcode = simdPrefixBase + 124
	OpI16x8ExtaddPairwiseI8x16U Opcode = simdPrefixBase + 125
	OpI32x4ExtaddPairwiseI16x8S Opcode = simdPrefixBase + 126
	OpI32x4ExtaddPairwiseI16x8U Opcode = simdPrefixBase + 127

	OpI16x8Abs         Opcode = simdPrefixBase + 128
	OpI16x8Neg         Opcode = simdPrefixBase + 129
	OpI16x8Q15mulrSatS Opcode = simdPrefixBase + 130
	OpI16x8AllTrue     Opcode = simdPrefixBase + 131
	OpI16x8Bitmask     Opcode = simdPrefixBase + 132
	OpI16x8NarrowI32x4S Opcode = simdPrefixBase + 133
	OpI16x8NarrowI32x4U Opcode = simdPrefixBase + 134
	OpI16x8ExtendLowI8x16S  Opcode = simdPrefixBase + 135
	OpI16x8ExtendHighI8x16S Opcode = simdPrefixBase + 136
	OpI16x8ExtendLowI8x16U  Opcode = simdPrefixBase + 137
	OpI16x8ExtendHighI8x16U Opcode = simdPrefixBase + 138
	OpI16x8Shl    Opcode = simdPrefixBase + 139
	OpI16x8ShrS   Opcode = simdPrefixBase + 140
	OpI16x8ShrU   Opcode = simdPrefixBase + 141
	OpI16x8Add    Opcode = simdPrefixBase + 142
	OpI16x8AddSatS Opcode = simdPrefixBase + 143
	OpI16x8AddSatU Opcode = simdPrefixBase + 144
	OpI16x8Sub    Opcode = simdPrefixBase + 145
	OpI16x8SubSatS Opcode = simdPrefixBase + 146
	OpI16x8SubSatU Opcode = simdPrefixBase + 147
	OpF64x2Nearest Opcode = simdPrefixBase + 148
	OpI16x8Mul    Opcode = simdPrefixBase + 149
	OpI16x8MinS Opcode = simdPrefixBase + 150
	OpI16x8MinU Opcode = simdPrefixBase + 151
	OpI16x8MaxS Opcode = simdPrefixBase + 152
	OpI16x8MaxU Opcode = simdPrefixBase + 153
	OpI16x8AvgrU Opcode = simdPrefixBase + 155

	OpI16x8ExtmulLowI8x16S  Opcode = simdPrefixBase + 156
	OpI16x8ExtmulHighI8x16S Opcode = simdPrefixBase + 157
	OpI16x8ExtmulLowI8x16U  Opcode = simdPrefixBase + 158
	OpI16x8ExtmulHighI8x16U Opcode = simdPrefixBase + 159

	OpI32x4Abs     Opcode = simdPrefixBase + 160
	OpI32x4Neg     Opcode = simdPrefixBase + 161
	OpI32x4AllTrue Opcode = simdPrefixBase + 163
	OpI32x4Bitmask Opcode = simdPrefixBase + 164
	OpI32x4ExtendLowI16x8S  Opcode = simdPrefixBase + 167
	OpI32x4ExtendHighI16x8S Opcode = simdPrefixBase + 168
	OpI32x4ExtendLowI16x8U  Opcode = simdPrefixBase + 169
	OpI32x4ExtendHighI16x8U Opcode = simdPrefixBase + 170
	OpI32x4Shl  Opcode = simdPrefixBase + 171
	OpI32x4ShrS Opcode = simdPrefixBase + 172
	OpI32x4ShrU Opcode = simdPrefixBase + 173
	OpI32x4Add  Opcode = simdPrefixBase + 174
	OpI32x4Sub  Opcode = simdPrefixBase + 177
	OpI32x4Mul  Opcode = simdPrefixBase + 181
	OpI32x4MinS Opcode = simdPrefixBase + 182
	OpI32x4MinU Opcode = simdPrefixBase + 183
	OpI32x4MaxS Opcode = simdPrefixBase + 184
	OpI32x4MaxU Opcode = simdPrefixBase + 185
	OpI32x4DotI16x8S Opcode = simdPrefixBase + 186

	OpI32x4ExtmulLowI16x8S  Opcode = simdPrefixBase + 188
	OpI32x4ExtmulHighI16x8S Opcode = simdPrefixBase + 189
	OpI32x4ExtmulLowI16x8U  Opcode = simdPrefixBase + 190
	OpI32x4ExtmulHighI16x8U Opcode = simdPrefixBase + 191

	OpI64x2Abs     Opcode = simdPrefixBase + 192
	OpI64x2Neg     Opcode = simdPrefixBase + 193
	OpI64x2AllTrue Opcode = simdPrefixBase + 195
	OpI64x2Bitmask Opcode = simdPrefixBase + 196
	OpI64x2ExtendLowI32x4S  Opcode = simdPrefixBase + 199
	OpI64x2ExtendHighI32x4S Opcode = simdPrefixBase + 200
	OpI64x2ExtendLowI32x4U  Opcode = simdPrefixBase + 201
	OpI64x2ExtendHighI32x4U Opcode = simdPrefixBase + 202
	OpI64x2Shl  Opcode = simdPrefixBase + 203
	OpI64x2ShrS Opcode = simdPrefixBase + 204
	OpI64x2ShrU Opcode = simdPrefixBase + 205
	OpI64x2Add  Opcode = simdPrefixBase + 206
	OpI64x2Sub  Opcode = simdPrefixBase + 209
	OpI64x2Mul  Opcode = simdPrefixBase + 213
	OpI64x2Eq  Opcode = simdPrefixBase + 214
	OpI64x2Ne  Opcode = simdPrefixBase + 215
	OpI64x2LtS Opcode = simdPrefixBase + 216
	OpI64x2GtS Opcode = simdPrefixBase + 217
	OpI64x2LeS Opcode = simdPrefixBase + 218
	OpI64x2GeS Opcode = simdPrefixBase + 219

	OpI64x2ExtmulLowI32x4S  Opcode = simdPrefixBase + 220
	OpI64x2ExtmulHighI32x4S Opcode = simdPrefixBase + 221
	OpI64x2ExtmulLowI32x4U  Opcode = simdPrefixBase + 222
	OpI64x2ExtmulHighI32x4U Opcode = simdPrefixBase + 223

	OpF32x4Abs  Opcode = simdPrefixBase + 224
	OpF32x4Neg  Opcode = simdPrefixBase + 225
	OpF32x4Sqrt Opcode = simdPrefixBase + 227
	OpF32x4Add  Opcode = simdPrefixBase + 228
	OpF32x4Sub  Opcode = simdPrefixBase + 229
	OpF32x4Mul  Opcode = simdPrefixBase + 230
	OpF32x4Div  Opcode = simdPrefixBase + 231
	OpF32x4Min  Opcode = simdPrefixBase + 232
	OpF32x4Max  Opcode = simdPrefixBase + 233
	OpF32x4Pmin Opcode = simdPrefixBase + 234
	OpF32x4Pmax Opcode = simdPrefixBase + 235

	OpF64x2Abs  Opcode = simdPrefixBase + 236
	OpF64x2Neg  Opcode = simdPrefixBase + 237
	OpF64x2Sqrt Opcode = simdPrefixBase + 239
	OpF64x2Add  Opcode = simdPrefixBase + 240
	OpF64x2Sub  Opcode = simdPrefixBase + 241
	OpF64x2Mul  Opcode = simdPrefixBase + 242
	OpF64x2Div  Opcode = simdPrefixBase + 243
	OpF64x2Min  Opcode = simdPrefixBase + 244
	OpF64x2Max  Opcode = simdPrefixBase + 245
	OpF64x2Pmin Opcode = simdPrefixBase + 246
	OpF64x2Pmax Opcode = simdPrefixBase + 247

	OpI32x4TruncSatF32x4S Opcode = simdPrefixBase + 248
	OpI32x4TruncSatF32x4U Opcode = simdPrefixBase + 249
	OpF32x4ConvertI32x4S  Opcode = simdPrefixBase + 250
	OpF32x4ConvertI32x4U  Opcode = simdPrefixBase + 251
	OpI32x4TruncSatF64x2SZero Opcode = simdPrefixBase + 252
	OpI32x4TruncSatF64x2UZero Opcode = simdPrefixBase + 253
	OpF64x2ConvertLowI32x4S   Opcode = simdPrefixBase + 254
	OpF64x2ConvertLowI32x4U   Opcode = simdPrefixBase + 255
)

// BlockType is the block signature carried by block/loop/if: either
// empty, a single value type (shorthand for one result, no params), or
// an index into the module's type section for the general multi-value
// case.
type BlockType struct {
	Empty     bool
	ValueType ValueType // valid iff !Empty && !IsTypeIndex
	TypeIndex uint32
	IsTypeIndex bool
}

// MemArg is the alignment hint and offset carried by every load/store
// instruction (including SIMD loads/stores). Align is informational
// only; Offset participates in effective address computation.
type MemArg struct {
	Align  uint32
	Offset uint32
}

// Instruction is a single decoded instruction: an opcode plus its
// immediate operands, if any. Imm is one of the Imm* types below, or
// nil for opcodes with no immediate.
type Instruction struct {
	Op  Opcode
	Imm any

	// ElseIndex and EndIndex resolve structured control instructions
	// (block/loop/if) to the index, within the same function's
	// instruction slice, of their matching else (if any, else -1) and
	// end. They are populated by the decoder's single-pass structured
	// control resolution and let the interpreter compute label
	// continuations without re-scanning.
	ElseIndex int
	EndIndex  int
}

// ImmI32 carries a 32-bit constant.
type ImmI32 struct{ V int32 }

// ImmI64 carries a 64-bit constant.
type ImmI64 struct{ V int64 }

// ImmF32 carries a 32-bit float constant.
type ImmF32 struct{ V float32 }

// ImmF64 carries a 64-bit float constant.
type ImmF64 struct{ V float64 }

// ImmV128 carries a 128-bit vector constant (v128.const), always 16 bytes.
type ImmV128 struct{ V [16]byte }

// ImmBlock carries a structured control instruction's (block/loop/if)
// block signature.
type ImmBlock struct{ Type BlockType }

// ImmIndex carries a single u32 index (br, local/global get/set,
// call, table/elem/data index, etc).
type ImmIndex struct{ Index uint32 }

// ImmBrTable carries br_table's label vector and default label.
type ImmBrTable struct {
	Labels  []uint32
	Default uint32
}

// ImmCallIndirect carries call_indirect's type index and table index.
type ImmCallIndirect struct {
	TypeIndex  uint32
	TableIndex uint32
}

// ImmMemArg carries a load/store's alignment/offset pair.
type ImmMemArg struct{ Mem MemArg }

// ImmLoadLane carries a SIMD load/store lane instruction's mem-arg plus
// target lane index.
type ImmLoadLane struct {
	Mem  MemArg
	Lane byte
}

// ImmLane carries a single lane-index byte (extract_lane, replace_lane).
type ImmLane struct{ Lane byte }

// ImmShuffle carries i8x16.shuffle's 16-byte lane-selection mask.
type ImmShuffle struct{ Lanes [16]byte }

// ImmRefType carries ref.null's target reference type.
type ImmRefType struct{ Type RefType }

// ImmMemoryInit carries memory.init's data-segment and (always zero)
// memory index.
type ImmMemoryInit struct {
	DataIndex   uint32
	MemoryIndex uint32
}

// ImmTableInit carries table.init's element-segment and table index.
type ImmTableInit struct {
	ElemIndex  uint32
	TableIndex uint32
}

// ImmMemoryCopy carries memory.copy's (destination, source) memory
// index pair, both always zero pre-multi-memory.
type ImmMemoryCopy struct {
	DstIndex uint32
	SrcIndex uint32
}

// ImmTableCopy carries table.copy's (destination, source) table index
// pair.
type ImmTableCopy struct {
	DstIndex uint32
	SrcIndex uint32
}

// ImmSelectTyped carries select's explicit WASM 2.0 type annotation.
type ImmSelectTyped struct{ Types []ValueType }
