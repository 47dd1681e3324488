// Package testutil contains fakes and builders that stand in for the kxo
// kernel module and the terminal in tests: a scripted keyboard, a board
// source fed with snapshots, a history source and an in-memory sysfs tree.
// They are not intended for production usage.
package testutil
