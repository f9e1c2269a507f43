// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package intrinsic

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ReturnType is the C type returned
// by an intrinsic.
type ReturnType uint8

const (
	ReturnUnknown ReturnType = iota
	ReturnVoid
	ReturnChar
	ReturnUnsignedChar
	ReturnShort
	ReturnUnsignedShort
	ReturnInt
	ReturnUnsignedInt
	ReturnInt32
	ReturnUnsignedInt32
	ReturnInt64
	ReturnUnsignedInt64
	ReturnLongLong
	ReturnUnsignedLongLong
	ReturnFloat
	ReturnDouble
	ReturnVoidPtr
	ReturnM64
	ReturnM128
	ReturnM128D
	ReturnM128I
	ReturnM128H
	ReturnM128BH
	ReturnM256
	ReturnM256D
	ReturnM256I
	ReturnM256H
	ReturnM256BH
	ReturnM512
	ReturnM512D
	ReturnM512I
	ReturnM512H
	ReturnM512BH
	ReturnMmask8
	ReturnMmask16
	ReturnMmask32
	ReturnMmask64
	numReturnTypes
)

var returnTypeNames = [numReturnTypes]string{
	ReturnUnknown:          "UNKNOWN",
	ReturnVoid:             "void",
	ReturnChar:             "char",
	ReturnUnsignedChar:     "unsigned char",
	ReturnShort:            "short",
	ReturnUnsignedShort:    "unsigned short",
	ReturnInt:              "int",
	ReturnUnsignedInt:      "unsigned int",
	ReturnInt32:            "__int32",
	ReturnUnsignedInt32:    "unsigned __int32",
	ReturnInt64:            "__int64",
	ReturnUnsignedInt64:    "unsigned __int64",
	ReturnLongLong:         "long long",
	ReturnUnsignedLongLong: "unsigned long long",
	ReturnFloat:            "float",
	ReturnDouble:           "double",
	ReturnVoidPtr:          "void*",
	ReturnM64:              "__m64",
	ReturnM128:             "__m128",
	ReturnM128D:            "__m128d",
	ReturnM128I:            "__m128i",
	ReturnM128H:            "__m128h",
	ReturnM128BH:           "__m128bh",
	ReturnM256:             "__m256",
	ReturnM256D:            "__m256d",
	ReturnM256I:            "__m256i",
	ReturnM256H:            "__m256h",
	ReturnM256BH:           "__m256bh",
	ReturnM512:             "__m512",
	ReturnM512D:            "__m512d",
	ReturnM512I:            "__m512i",
	ReturnM512H:            "__m512h",
	ReturnM512BH:           "__m512bh",
	ReturnMmask8:           "__mmask8",
	ReturnMmask16:          "__mmask16",
	ReturnMmask32:          "__mmask32",
	ReturnMmask64:          "__mmask64",
}

// returnTypeAliases holds historical
// spellings seen in catalogs.
var returnTypeAliases = map[string]ReturnType{
	"unsigned":         ReturnUnsignedInt,
	"signed int":       ReturnInt,
	"int32_t":          ReturnInt32,
	"uint32_t":         ReturnUnsignedInt32,
	"int64_t":          ReturnInt64,
	"uint64_t":         ReturnUnsignedInt64,
	"unsigned long":    ReturnUnsignedInt32,
	"unsigned __int8":  ReturnUnsignedChar,
	"unsigned __int16": ReturnUnsignedShort,
	"__int8":           ReturnChar,
	"__int16":          ReturnShort,
	"__mmask":          ReturnMmask16,
}

// ParamType is the C type of one
// parameter to an intrinsic.
//
// Pointer and const-pointer forms are
// distinct members rather than being
// composed from a base type.
type ParamType uint8

const (
	ParamUnknown ParamType = iota
	ParamVoid
	ParamChar
	ParamConstChar
	ParamUnsignedChar
	ParamShort
	ParamUnsignedShort
	ParamInt
	ParamConstInt
	ParamUnsignedInt
	ParamConstUnsignedInt
	ParamInt32
	ParamUnsignedInt32
	ParamInt64
	ParamConstInt64
	ParamUnsignedInt64
	ParamLongLong
	ParamUnsignedLongLong
	ParamFloat
	ParamDouble
	ParamSizeT
	ParamM64
	ParamM128
	ParamM128D
	ParamM128I
	ParamM128H
	ParamM128BH
	ParamM256
	ParamM256D
	ParamM256I
	ParamM256H
	ParamM256BH
	ParamM512
	ParamM512D
	ParamM512I
	ParamM512H
	ParamM512BH
	ParamMmask8
	ParamMmask16
	ParamMmask32
	ParamMmask64
	ParamPermEnum
	ParamMantissaNormEnum
	ParamMantissaSignEnum
	ParamCmpIntEnum

	// Pointer forms.
	ParamVoidPtr
	ParamConstVoidPtr
	ParamCharPtr
	ParamConstCharPtr
	ParamShortPtr
	ParamIntPtr
	ParamConstIntPtr
	ParamUnsignedIntPtr
	ParamInt64Ptr
	ParamConstInt64Ptr
	ParamUnsignedInt64Ptr
	ParamLongLongPtr
	ParamFloatPtr
	ParamConstFloatPtr
	ParamDoublePtr
	ParamConstDoublePtr
	ParamM64Ptr
	ParamConstM64Ptr
	ParamM128Ptr
	ParamM128DPtr
	ParamM128IPtr
	ParamConstM128IPtr
	ParamM256IPtr
	ParamConstM256IPtr
	ParamM512Ptr
	ParamM512DPtr
	ParamM512IPtr
	ParamMmask8Ptr
	ParamMmask16Ptr
	ParamMmask32Ptr
	ParamMmask64Ptr
	numParamTypes
)

var paramTypeNames = [numParamTypes]string{
	ParamUnknown:          "UNKNOWN",
	ParamVoid:             "void",
	ParamChar:             "char",
	ParamConstChar:        "const char",
	ParamUnsignedChar:     "unsigned char",
	ParamShort:            "short",
	ParamUnsignedShort:    "unsigned short",
	ParamInt:              "int",
	ParamConstInt:         "const int",
	ParamUnsignedInt:      "unsigned int",
	ParamConstUnsignedInt: "const unsigned int",
	ParamInt32:            "__int32",
	ParamUnsignedInt32:    "unsigned __int32",
	ParamInt64:            "__int64",
	ParamConstInt64:       "const __int64",
	ParamUnsignedInt64:    "unsigned __int64",
	ParamLongLong:         "long long",
	ParamUnsignedLongLong: "unsigned long long",
	ParamFloat:            "float",
	ParamDouble:           "double",
	ParamSizeT:            "size_t",
	ParamM64:              "__m64",
	ParamM128:             "__m128",
	ParamM128D:            "__m128d",
	ParamM128I:            "__m128i",
	ParamM128H:            "__m128h",
	ParamM128BH:           "__m128bh",
	ParamM256:             "__m256",
	ParamM256D:            "__m256d",
	ParamM256I:            "__m256i",
	ParamM256H:            "__m256h",
	ParamM256BH:           "__m256bh",
	ParamM512:             "__m512",
	ParamM512D:            "__m512d",
	ParamM512I:            "__m512i",
	ParamM512H:            "__m512h",
	ParamM512BH:           "__m512bh",
	ParamMmask8:           "__mmask8",
	ParamMmask16:          "__mmask16",
	ParamMmask32:          "__mmask32",
	ParamMmask64:          "__mmask64",
	ParamPermEnum:         "_MM_PERM_ENUM",
	ParamMantissaNormEnum: "_MM_MANTISSA_NORM_ENUM",
	ParamMantissaSignEnum: "_MM_MANTISSA_SIGN_ENUM",
	ParamCmpIntEnum:       "_MM_CMPINT_ENUM",
	ParamVoidPtr:          "void*",
	ParamConstVoidPtr:     "const void*",
	ParamCharPtr:          "char*",
	ParamConstCharPtr:     "const char*",
	ParamShortPtr:         "short*",
	ParamIntPtr:           "int*",
	ParamConstIntPtr:      "const int*",
	ParamUnsignedIntPtr:   "unsigned int*",
	ParamInt64Ptr:         "__int64*",
	ParamConstInt64Ptr:    "const __int64*",
	ParamUnsignedInt64Ptr: "unsigned __int64*",
	ParamLongLongPtr:      "long long*",
	ParamFloatPtr:         "float*",
	ParamConstFloatPtr:    "const float*",
	ParamDoublePtr:        "double*",
	ParamConstDoublePtr:   "const double*",
	ParamM64Ptr:           "__m64*",
	ParamConstM64Ptr:      "const __m64*",
	ParamM128Ptr:          "__m128*",
	ParamM128DPtr:         "__m128d*",
	ParamM128IPtr:         "__m128i*",
	ParamConstM128IPtr:    "const __m128i*",
	ParamM256IPtr:         "__m256i*",
	ParamConstM256IPtr:    "const __m256i*",
	ParamM512Ptr:          "__m512*",
	ParamM512DPtr:         "__m512d*",
	ParamM512IPtr:         "__m512i*",
	ParamMmask8Ptr:        "__mmask8*",
	ParamMmask16Ptr:       "__mmask16*",
	ParamMmask32Ptr:       "__mmask32*",
	ParamMmask64Ptr:       "__mmask64*",
}

var paramTypeAliases = map[string]ParamType{
	"unsigned":           ParamUnsignedInt,
	"signed int":         ParamInt,
	"const unsigned":     ParamConstUnsignedInt,
	"int32_t":            ParamInt32,
	"uint32_t":           ParamUnsignedInt32,
	"int64_t":            ParamInt64,
	"uint64_t":           ParamUnsignedInt64,
	"unsigned long":      ParamUnsignedInt32,
	"unsigned __int8":    ParamUnsignedChar,
	"unsigned __int16":   ParamUnsignedShort,
	"__int8":             ParamChar,
	"__int16":            ParamShort,
	"__mmask":            ParamMmask16,
	"int const*":         ParamConstIntPtr,
	"__int64 const*":     ParamConstInt64Ptr,
	"long long const*":   ParamConstInt64Ptr,
	"unsigned int const": ParamConstUnsignedInt,
}

var (
	returnTypesByKey map[string]ReturnType
	paramTypesByKey  map[string]ParamType
)

func init() {
	returnTypesByKey = make(map[string]ReturnType, len(returnTypeNames)+len(returnTypeAliases))
	for i, name := range returnTypeNames {
		if ReturnType(i) != ReturnUnknown {
			returnTypesByKey[typeKey(name)] = ReturnType(i)
		}
	}

	for alias, typ := range returnTypeAliases {
		returnTypesByKey[typeKey(alias)] = typ
	}

	paramTypesByKey = make(map[string]ParamType, len(paramTypeNames)+len(paramTypeAliases))
	for i, name := range paramTypeNames {
		if ParamType(i) != ParamUnknown {
			paramTypesByKey[typeKey(name)] = ParamType(i)
		}
	}

	for alias, typ := range paramTypeAliases {
		paramTypesByKey[typeKey(alias)] = typ
	}
}

// typeKey canonicalises the spelling of a
// C type: upper case, single spaces, a
// single leading "CONST", and pointer
// stars attached to the base type.
//
// Example:
//
//	"void  const *" -> "CONST VOID*"
func typeKey(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "*", " * ")
	fields := strings.Fields(s)
	var isConst bool
	var stars int
	base := fields[:0]
	for _, field := range fields {
		switch field {
		case "CONST":
			isConst = true
		case "*":
			stars++
		default:
			base = append(base, field)
		}
	}

	key := strings.Join(base, " ")
	if isConst {
		key = "CONST " + key
	}

	return key + strings.Repeat("*", stars)
}

// ParseReturnType parses the textual
// form of a return type. Case, spacing,
// and the position of "const" are not
// significant.
//
// Unrecognised text returns ReturnUnknown
// and false.
func ParseReturnType(s string) (ReturnType, bool) {
	t, ok := returnTypesByKey[typeKey(s)]
	return t, ok
}

// ParseParamType parses the textual
// form of a parameter type, in the
// same way as ParseReturnType.
func ParseParamType(s string) (ParamType, bool) {
	t, ok := paramTypesByKey[typeKey(s)]
	return t, ok
}

// ReturnTypes returns every known return
// type, excluding ReturnUnknown.
func ReturnTypes() []ReturnType {
	out := make([]ReturnType, 0, numReturnTypes-1)
	for t := ReturnUnknown + 1; t < numReturnTypes; t++ {
		out = append(out, t)
	}

	return out
}

// ParamTypes returns every known parameter
// type, excluding ParamUnknown.
func ParamTypes() []ParamType {
	out := make([]ParamType, 0, numParamTypes-1)
	for t := ParamUnknown + 1; t < numParamTypes; t++ {
		out = append(out, t)
	}

	return out
}

func (t ReturnType) String() string {
	if t < numReturnTypes {
		return returnTypeNames[t]
	}

	return fmt.Sprintf("ReturnType(%d)", t)
}

func (t ParamType) String() string {
	if t < numParamTypes {
		return paramTypeNames[t]
	}

	return fmt.Sprintf("ParamType(%d)", t)
}

// IsPointer returns whether t is one
// of the pointer forms.
func (t ParamType) IsPointer() bool {
	return t >= ParamVoidPtr && t < numParamTypes
}

// Register returns the SIMD register
// class of t, or RegNone for scalar
// and pointer types.
func (t ReturnType) Register() SimdRegisterType {
	if t == ReturnUnknown || t >= numReturnTypes {
		return RegNone
	}

	return RegisterOfText(returnTypeNames[t])
}

// Register returns the SIMD register
// class of t, or RegNone for scalar
// and pointer types.
func (t ParamType) Register() SimdRegisterType {
	if t == ParamUnknown || t.IsPointer() || t >= numParamTypes {
		return RegNone
	}

	return RegisterOfText(paramTypeNames[t])
}

func (t ReturnType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ReturnType) UnmarshalJSON(data []byte) error {
	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return err
	}

	got, ok := ParseReturnType(s)
	if !ok && s != "UNKNOWN" {
		return fmt.Errorf("invalid return type %q", s)
	}

	*t = got

	return nil
}

func (t ParamType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ParamType) UnmarshalJSON(data []byte) error {
	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return err
	}

	got, ok := ParseParamType(s)
	if !ok && s != "UNKNOWN" {
		return fmt.Errorf("invalid parameter type %q", s)
	}

	*t = got

	return nil
}
