// Package quota admits or denies free-tier requests against a daily
// per-endpoint counter. Pro users are always admitted and never counted.
//
// Gate reads the counter and increments it in two separate statements, so
// concurrent requests at limit-1 can all be admitted. AtomicGate performs
// the check and the increment in one statement and never exceeds the limit.
package quota
