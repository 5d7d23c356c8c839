package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"mocap-pair-viewer/internal/bvh"
	"mocap-pair-viewer/internal/gltfexport"
	"mocap-pair-viewer/internal/logging"
	"mocap-pair-viewer/internal/normalize"
	"mocap-pair-viewer/internal/skeleton"
	"mocap-pair-viewer/internal/skelmesh"
)

func main() {
	gltfOut := flag.String("gltf", "", "Export the normalized visual skeleton to this .gltf/.glb file")
	frame := flag.Int("frame", -1, "Pose to export (default: rest pose)")
	policy := flag.String("policy", "", "Normalization for export: vertical-fit or max-extent")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: inspect [flags] file.bvh")
		os.Exit(2)
	}
	path := flag.Arg(0)
	logger := logging.New(os.Stderr, *verbose)

	m, err := bvh.Parse(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	s := m.Skeleton

	fmt.Printf("Bones: %d, Channels: %d\n", s.Len(), m.ChannelCount())
	fmt.Printf("Frames: %d, Frame time: %.6fs, Duration: %v\n", m.Clip.Len(), m.FrameTime(), m.Clip.Duration())
	printTree(s, m.Channels, s.Root(), 0)

	visual := skelmesh.Build(s, skelmesh.DefaultOptions())
	fmt.Printf("Visual: %d joint markers, %d bone connectors\n", visual.Markers(), visual.Connectors())

	rest := s.RestPose()
	raw := visual.Bounds(rest, normalize.Identity().Mat4())
	size := raw.Size()
	fmt.Printf("Rest bounds: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n",
		raw.Min[0], raw.Max[0], raw.Min[1], raw.Max[1], raw.Min[2], raw.Max[2])
	fmt.Printf("Rest size: %.2f x %.2f x %.2f\n", size[0], size[1], size[2])

	for _, p := range []normalize.Policy{normalize.VerticalFit, normalize.MaxExtent} {
		t := normalize.Normalizer{Policy: p, Logger: logger}.Normalize(rest, visual)
		after := visual.Bounds(rest, t.Mat4()).Size()
		fmt.Printf("  %-12s scale=%.5f translation=(%.2f, %.2f, %.2f) size=%.1f x %.1f x %.1f\n",
			p, t.Scale, t.Translation[0], t.Translation[1], t.Translation[2], after[0], after[1], after[2])
	}

	if *gltfOut == "" {
		return
	}
	pol, err := normalize.ParsePolicy(*policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	t := normalize.Normalizer{Policy: pol, Logger: logger}.Normalize(rest, visual)
	pose := rest
	if *frame >= 0 {
		pose = s.BuildWorldMatrices(m.Clip.Frame(*frame))
	}
	doc := gltfexport.Build(s, visual, pose, t.Mat4())
	if err := gltfexport.Save(doc, *gltfOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported: %s (%d nodes)\n", *gltfOut, len(doc.Nodes))
}

func printTree(s *skeleton.Skeleton, channels [][]bvh.Channel, id, depth int) {
	if id < 0 {
		return
	}
	b := s.Bones[id]
	var chans []string
	if id < len(channels) {
		for _, c := range channels[id] {
			chans = append(chans, c.String())
		}
	}
	fmt.Printf("%s%s offset=(%.2f, %.2f, %.2f) len=%.2f %s\n",
		strings.Repeat("  ", depth), b.Name, b.Offset[0], b.Offset[1], b.Offset[2], b.Offset.Len(), strings.Join(chans, " "))
	for _, c := range b.Children {
		printTree(s, channels, c, depth+1)
	}
}
