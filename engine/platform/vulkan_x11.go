//go:build linux || freebsd

package platform

import (
	"fmt"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"

	"github.com/spaghettifunk/midnight/engine/core"
)

// Instance extensions a Vulkan surface on this window needs.
var requiredInstanceExtensions = []string{"VK_KHR_surface", "VK_KHR_xlib_surface"}

// ProbeVulkan loads the Vulkan loader and logs the instance version, layer
// and extension counts it reports.
func (w *Window) ProbeVulkan() error {
	lib, err := ffi.LoadLibrary("libvulkan.so.1")
	if err != nil {
		return fmt.Errorf("vulkan loader not found: %w", err)
	}
	defer func() { _ = ffi.FreeLibrary(lib) }()

	ptr, result := types.PointerTypeDescriptor, types.SInt32TypeDescriptor
	var version, layers, exts xfunc
	if err := version.bind(lib, "vkEnumerateInstanceVersion", result, ptr); err != nil {
		return err
	}
	if err := layers.bind(lib, "vkEnumerateInstanceLayerProperties", result, ptr, ptr); err != nil {
		return err
	}
	if err := exts.bind(lib, "vkEnumerateInstanceExtensionProperties", result, ptr, ptr, ptr); err != nil {
		return err
	}

	var res int32
	var apiVersion uint32
	versionPtr := unsafe.Pointer(&apiVersion)
	version.call(unsafe.Pointer(&res), unsafe.Pointer(&versionPtr))
	if res != 0 {
		return fmt.Errorf("failed to query instance version: %d", res)
	}

	var layerCount uint32
	countPtr := unsafe.Pointer(&layerCount)
	var none unsafe.Pointer
	layers.call(unsafe.Pointer(&res), unsafe.Pointer(&countPtr), unsafe.Pointer(&none))
	if res != 0 {
		return fmt.Errorf("failed to count instance layers: %d", res)
	}

	var extensionCount uint32
	countPtr = unsafe.Pointer(&extensionCount)
	exts.call(unsafe.Pointer(&res), unsafe.Pointer(&none), unsafe.Pointer(&countPtr), unsafe.Pointer(&none))
	if res != 0 {
		return fmt.Errorf("failed to count instance extensions: %d", res)
	}

	core.LogInfo("Vulkan %d.%d.%d loader reports %d layers and %d instance extensions.",
		apiVersion>>22&0x7f, apiVersion>>12&0x3ff, apiVersion&0xfff, layerCount, extensionCount)
	for _, ext := range requiredInstanceExtensions {
		core.LogDebug("Window requires extension %s", ext)
	}
	return nil
}
