//go:build windows

package main

import (
	"os"
	"syscall"
	"unsafe"
)

const enableVirtualTerminalProcessing = 0x0004

// enableWindowsANSI switches the console into virtual-terminal mode so the
// progress bar's ANSI escape sequences render on Windows 10+.
func enableWindowsANSI() {
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	getConsoleMode := kernel32.NewProc("GetConsoleMode")
	setConsoleMode := kernel32.NewProc("SetConsoleMode")

	handle := uintptr(syscall.Handle(os.Stdout.Fd()))

	var mode uint32
	_, _, _ = getConsoleMode.Call(handle, uintptr(unsafe.Pointer(&mode)))
	_, _, _ = setConsoleMode.Call(handle, uintptr(mode|enableVirtualTerminalProcessing))
}
