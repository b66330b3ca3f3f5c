package vgfx

import (
	vk "github.com/vulkan-go/vulkan"
)

// PipelineCache wraps a native pipeline cache shared across pipeline
// creation calls.
type PipelineCache struct {
	Device          *Device
	VKPipelineCache vk.PipelineCache
}

func (d *Device) CreatePipelineCache() (*PipelineCache, error) {
	info := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}

	var cache vk.PipelineCache
	if err := newResultError("create pipeline cache", vk.CreatePipelineCache(d.VKDevice, &info, nil, &cache)); err != nil {
		return nil, err
	}
	return &PipelineCache{Device: d, VKPipelineCache: cache}, nil
}

func (p *PipelineCache) Destroy() {
	vk.DestroyPipelineCache(p.Device.VKDevice, p.VKPipelineCache, nil)
}

// GraphicsPipeline is a compiled graphics pipeline.
type GraphicsPipeline struct {
	Device     *Device
	VKPipeline vk.Pipeline
}

func (p *GraphicsPipeline) Destroy() {
	vk.DestroyPipeline(p.Device.VKDevice, p.VKPipeline, nil)
}

// CreateGraphicsPipelines compiles one pipeline per config against the
// given render pass and extent, sharing the pipeline cache.
func (d *Device) CreateGraphicsPipelines(pc *PipelineCache, renderPass vk.RenderPass, extent vk.Extent2D, configs ...*GraphicsPipelineConfig) ([]*GraphicsPipeline, error) {
	infos := make([]vk.GraphicsPipelineCreateInfo, len(configs))
	for i, cfg := range configs {
		info := cfg.VKGraphicsPipelineCreateInfo(extent)
		info.RenderPass = renderPass
		infos[i] = info
	}

	pipelines := make([]vk.Pipeline, len(configs))
	if err := newResultError("create graphics pipelines",
		vk.CreateGraphicsPipelines(d.VKDevice, pc.VKPipelineCache, uint32(len(infos)), infos, nil, pipelines)); err != nil {
		return nil, err
	}

	ret := make([]*GraphicsPipeline, len(pipelines))
	for i, p := range pipelines {
		ret[i] = &GraphicsPipeline{Device: d, VKPipeline: p}
	}
	return ret, nil
}
