package hyperv

import (
	"context"
	"fmt"
)

type VHD struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	Type       string `json:"type"`
	Size       uint64 `json:"size"`
	FileSize   uint64 `json:"file_size"`
	ParentPath string `json:"parent_path"`
	Attached   bool   `json:"attached"`
}

// VHDSpec describes a disk to create. A non-empty Source copies that disk
// instead of creating an empty one.
type VHDSpec struct {
	Path      string
	SizeBytes uint64
	Fixed     bool
	Source    string
}

// GetVHD returns nil, nil when path does not exist.
func (c *Client) GetVHD(ctx context.Context, path string) (*VHD, error) {
	var s script
	s.add("if (Test-Path -LiteralPath %s) { $vhd = Get-VHD -Path %s; "+
		"[pscustomobject]@{ path = $vhd.Path; format = $vhd.VhdFormat.ToString(); type = $vhd.VhdType.ToString(); "+
		"size = $vhd.Size; file_size = $vhd.FileSize; parent_path = [string]$vhd.ParentPath; attached = [bool]$vhd.Attached } | ConvertTo-Json -Compress }",
		Quote(path), Quote(path))

	var vhd VHD
	found, err := c.query(ctx, s.String(), &vhd)
	if err != nil {
		return nil, fmt.Errorf("failed to get vhd %s: %w", path, err)
	}
	if !found {
		return nil, nil
	}
	return &vhd, nil
}

func (c *Client) NewVHD(ctx context.Context, spec VHDSpec) error {
	var cmd string
	switch {
	case spec.Source != "":
		cmd = fmt.Sprintf("Copy-Item -LiteralPath %s -Destination %s", Quote(spec.Source), Quote(spec.Path))
	case spec.Fixed:
		cmd = fmt.Sprintf("New-VHD -Path %s -SizeBytes %d -Fixed | Out-Null", Quote(spec.Path), spec.SizeBytes)
	default:
		cmd = fmt.Sprintf("New-VHD -Path %s -SizeBytes %d -Dynamic | Out-Null", Quote(spec.Path), spec.SizeBytes)
	}
	if err := c.run(ctx, cmd); err != nil {
		return fmt.Errorf("failed to create vhd %s: %w", spec.Path, err)
	}
	return nil
}

// ResizeVHD grows the disk to sizeBytes. Hyper-V refuses to shrink below the
// space in use.
func (c *Client) ResizeVHD(ctx context.Context, path string, sizeBytes uint64) error {
	if err := c.run(ctx, fmt.Sprintf("Resize-VHD -Path %s -SizeBytes %d", Quote(path), sizeBytes)); err != nil {
		return fmt.Errorf("failed to resize vhd %s: %w", path, err)
	}
	return nil
}

func (c *Client) RemoveVHD(ctx context.Context, path string) error {
	if err := c.run(ctx, "Remove-Item -LiteralPath "+Quote(path)); err != nil {
		return fmt.Errorf("failed to remove vhd %s: %w", path, err)
	}
	return nil
}
