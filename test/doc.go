// Package test provides small assertion and capture helpers shared by the
// tests of every package in this module. It has no dependency on the
// packages it helps test, so it can be imported from anywhere without
// creating import cycles.
package test
