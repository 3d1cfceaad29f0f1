package lds

import (
	"github.com/zintix-labs/ldslab/errs"
)

// primeTable 前 168 個質數（1000 以內全部）。
//
// Halton 構造慣用前 n 個質數當 base：天然互異、兩兩互質，
// 而且小 base 的一維投影差異最低。168 維遠超本包支援的幾何
// 生成器所需（最高 S³ 用 3 維），保留餘裕給高維 Halton 使用者。
var primeTable = [168]int{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
	73, 79, 83, 89, 97, 101, 103, 107, 109, 113, 127, 131, 137, 139, 149, 151,
	157, 163, 167, 173, 179, 181, 191, 193, 197, 199, 211, 223, 227, 229, 233,
	239, 241, 251, 257, 263, 269, 271, 277, 281, 283, 293, 307, 311, 313, 317,
	331, 337, 347, 349, 353, 359, 367, 373, 379, 383, 389, 397, 401, 409, 419,
	421, 431, 433, 439, 443, 449, 457, 461, 463, 467, 479, 487, 491, 499, 503,
	509, 521, 523, 541, 547, 557, 563, 569, 571, 577, 587, 593, 599, 601, 607,
	613, 617, 619, 631, 641, 643, 647, 653, 659, 661, 673, 677, 683, 691, 701,
	709, 719, 727, 733, 739, 743, 751, 757, 761, 769, 773, 787, 797, 809, 811,
	821, 823, 827, 829, 839, 853, 857, 859, 863, 877, 881, 883, 887, 907, 911,
	919, 929, 937, 941, 947, 953, 967, 971, 977, 983, 991, 997,
}

// Primes 回傳前 n 個質數，作為 Halton 的預設 base 列表。
//
// n 超出內建表（168）回傳 KindConfig 錯誤；本包不做質數生成。
func Primes(n int) ([]int, error) {
	if n < 1 {
		return nil, errs.Configf("primes n must be >= 1, got %d", n)
	}
	if n > len(primeTable) {
		return nil, errs.Configf("primes n must be <= %d, got %d", len(primeTable), n)
	}
	return append([]int(nil), primeTable[:n]...), nil
}

// NewHaltonPrime 以前 n 個質數為 base 建立 n 維 Halton 生成器。
func NewHaltonPrime(n int) (*Halton, error) {
	bases, err := Primes(n)
	if err != nil {
		return nil, err
	}
	return NewHalton(bases)
}
