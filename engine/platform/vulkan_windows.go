//go:build windows

package platform

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/midnight/engine/core"
)

// ProbeVulkan loads the Vulkan loader through glfw and logs the instance
// layers and extensions it reports.
func (w *Window) ProbeVulkan() error {
	if !glfw.VulkanSupported() {
		return fmt.Errorf("vulkan loader not found")
	}
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vk: %w", err)
	}

	var layerCount uint32
	if res := vk.EnumerateInstanceLayerProperties(&layerCount, nil); res != vk.Success {
		return fmt.Errorf("failed to count instance layers: %d", res)
	}
	layers := make([]vk.LayerProperties, layerCount)
	if res := vk.EnumerateInstanceLayerProperties(&layerCount, layers); res != vk.Success {
		return fmt.Errorf("failed to enumerate instance layers: %d", res)
	}
	for i := range layers {
		layers[i].Deref()
		core.LogDebug("Vulkan layer: %s", vk.ToString(layers[i].LayerName[:]))
	}

	var extensionCount uint32
	if res := vk.EnumerateInstanceExtensionProperties("", &extensionCount, nil); res != vk.Success {
		return fmt.Errorf("failed to count instance extensions: %d", res)
	}
	core.LogInfo("Vulkan loader reports %d layers and %d instance extensions.", layerCount, extensionCount)
	for _, ext := range w.window.GetRequiredInstanceExtensions() {
		core.LogDebug("Window requires extension %s", ext)
	}
	return nil
}
