// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package intrinsic

// mmxNames lists the intrinsics that operate
// on the legacy 64-bit MMX registers. This is
// not derived from parameter types: __m64 also
// appears in SSE signatures, such as
// _mm_loadh_pi, that never use an MMX register.
var mmxNames = [...]string{
	"_m_empty",
	"_m_from_int",
	"_m_from_int64",
	"_m_maskmovq",
	"_m_packssdw",
	"_m_packsswb",
	"_m_packuswb",
	"_m_paddb",
	"_m_paddd",
	"_m_paddsb",
	"_m_paddsw",
	"_m_paddusb",
	"_m_paddusw",
	"_m_paddw",
	"_m_pand",
	"_m_pandn",
	"_m_pavgb",
	"_m_pavgw",
	"_m_pcmpeqb",
	"_m_pcmpeqd",
	"_m_pcmpeqw",
	"_m_pcmpgtb",
	"_m_pcmpgtd",
	"_m_pcmpgtw",
	"_m_pextrw",
	"_m_pinsrw",
	"_m_pmaddwd",
	"_m_pmaxsw",
	"_m_pmaxub",
	"_m_pminsw",
	"_m_pminub",
	"_m_pmovmskb",
	"_m_pmulhuw",
	"_m_pmulhw",
	"_m_pmullw",
	"_m_por",
	"_m_psadbw",
	"_m_pshufw",
	"_m_psllw",
	"_m_psllwi",
	"_m_psraw",
	"_m_psrawi",
	"_m_psrlw",
	"_m_psrlwi",
	"_m_psubb",
	"_m_psubd",
	"_m_psubw",
	"_m_punpckhbw",
	"_m_punpcklbw",
	"_m_pxor",
	"_m_to_int",
	"_m_to_int64",
	"_mm_abs_pi16",
	"_mm_abs_pi32",
	"_mm_abs_pi8",
	"_mm_add_pi16",
	"_mm_add_pi32",
	"_mm_add_pi8",
	"_mm_add_si64",
	"_mm_adds_pi16",
	"_mm_adds_pi8",
	"_mm_adds_pu16",
	"_mm_adds_pu8",
	"_mm_alignr_pi8",
	"_mm_and_si64",
	"_mm_andnot_si64",
	"_mm_avg_pu16",
	"_mm_avg_pu8",
	"_mm_cmpeq_pi16",
	"_mm_cmpeq_pi32",
	"_mm_cmpeq_pi8",
	"_mm_cmpgt_pi16",
	"_mm_cmpgt_pi32",
	"_mm_cmpgt_pi8",
	"_mm_cvt_pi2ps",
	"_mm_cvt_ps2pi",
	"_mm_cvtm64_si64",
	"_mm_cvtpd_pi32",
	"_mm_cvtpi16_ps",
	"_mm_cvtpi32_pd",
	"_mm_cvtpi32_ps",
	"_mm_cvtpi32x2_ps",
	"_mm_cvtpi8_ps",
	"_mm_cvtps_pi16",
	"_mm_cvtps_pi32",
	"_mm_cvtps_pi8",
	"_mm_cvtpu16_ps",
	"_mm_cvtpu8_ps",
	"_mm_cvtsi32_si64",
	"_mm_cvtsi64_m64",
	"_mm_cvtsi64_si32",
	"_mm_cvtt_ps2pi",
	"_mm_cvttpd_pi32",
	"_mm_cvttps_pi32",
	"_mm_empty",
	"_mm_extract_pi16",
	"_mm_hadd_pi16",
	"_mm_hadd_pi32",
	"_mm_hadds_pi16",
	"_mm_hsub_pi16",
	"_mm_hsub_pi32",
	"_mm_hsubs_pi16",
	"_mm_insert_pi16",
	"_mm_madd_pi16",
	"_mm_maddubs_pi16",
	"_mm_maskmove_si64",
	"_mm_max_pi16",
	"_mm_max_pu8",
	"_mm_min_pi16",
	"_mm_min_pu8",
	"_mm_movemask_pi8",
	"_mm_movepi64_pi64",
	"_mm_movpi64_epi64",
	"_mm_mul_su32",
	"_mm_mulhi_pi16",
	"_mm_mulhi_pu16",
	"_mm_mulhrs_pi16",
	"_mm_mullo_pi16",
	"_mm_or_si64",
	"_mm_packs_pi16",
	"_mm_packs_pi32",
	"_mm_packs_pu16",
	"_mm_sad_pu8",
	"_mm_set1_epi64",
	"_mm_set1_pi16",
	"_mm_set1_pi32",
	"_mm_set1_pi8",
	"_mm_set_epi64",
	"_mm_set_pi16",
	"_mm_set_pi32",
	"_mm_set_pi8",
	"_mm_setr_epi64",
	"_mm_setr_pi16",
	"_mm_setr_pi32",
	"_mm_setr_pi8",
	"_mm_setzero_si64",
	"_mm_shuffle_pi16",
	"_mm_shuffle_pi8",
	"_mm_sign_pi16",
	"_mm_sign_pi32",
	"_mm_sign_pi8",
	"_mm_sll_pi16",
	"_mm_sll_pi32",
	"_mm_sll_si64",
	"_mm_slli_pi16",
	"_mm_slli_pi32",
	"_mm_slli_si64",
	"_mm_sra_pi16",
	"_mm_sra_pi32",
	"_mm_srai_pi16",
	"_mm_srai_pi32",
	"_mm_srl_pi16",
	"_mm_srl_pi32",
	"_mm_srl_si64",
	"_mm_srli_pi16",
	"_mm_srli_pi32",
	"_mm_srli_si64",
	"_mm_stream_pi",
	"_mm_sub_pi16",
	"_mm_sub_pi32",
	"_mm_sub_pi8",
	"_mm_sub_si64",
	"_mm_subs_pi16",
	"_mm_subs_pi8",
	"_mm_subs_pu16",
	"_mm_subs_pu8",
	"_mm_unpackhi_pi16",
	"_mm_unpackhi_pi32",
	"_mm_unpackhi_pi8",
	"_mm_unpacklo_pi16",
	"_mm_unpacklo_pi32",
	"_mm_unpacklo_pi8",
	"_mm_xor_si64",
}

var mmxSet = buildMMXSet()

func buildMMXSet() map[Intrinsic]bool {
	set := make(map[Intrinsic]bool, len(mmxNames))
	for _, name := range mmxNames {
		x, ok := ParseIntrinsic(name)
		if !ok {
			panic("intrinsic: unknown MMX intrinsic " + name)
		}

		set[x] = true
	}

	return set
}

// UsesMMX returns whether x operates on the
// legacy MMX register file.
func UsesMMX(x Intrinsic) bool {
	return mmxSet[x]
}
