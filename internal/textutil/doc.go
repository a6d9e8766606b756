// Package textutil provides name and filename sanitization.
//
// Logical names are the identifiers the avatar runtime stores uploads under;
// they are transliterated to ASCII so "Però sì" and "Pero si" address the same
// pair of files. Filename helpers keep path segments safe on every platform.
package textutil
