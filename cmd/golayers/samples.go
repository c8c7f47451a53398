// samples.go - Sample inputs written by "golayers init".
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xob0t/GoLayers/pkg/editor"
)

const sampleCreative = `{
  "id": "summer-sale",
  "platform": "linkedin",
  "format": "single-image",
  "headline": "Summer Sale",
  "description": "Up to 50% off everything",
  "call_to_action": "Shop now",
  "image_url": "",
  "dimensions": "1200x627"
}
`

const sampleBrand = `{
  "primaryColor": "#3b82f6",
  "secondaryColor": "#1e293b",
  "brandName": "Acme"
}
`

const sampleScript = `# Steps replay editor actions in order. Pointer coordinates are canvas pixels.
steps:
  - action: settings
    settings:
      background_color: "#1e293b"
  - action: add_text
    text: "Summer Sale\nUp to 50% off"
  - action: patch
    id: $last
    geometry: {x: 8, y: 12, width: 60, height: 30}
    style: {font_size: 56, font_weight: bold, color: "#ffffff"}
  - action: add_shape
    shape: circle
  - action: patch
    id: $last
    geometry: {x: 70, y: 10, width: 22, height: 42}
    style: {background_color: "#f59e0b", opacity: 0.9}
  - action: back
    id: $last
  # Drag the call-to-action button 40px up.
  - action: down
    x: 600
    y: 550
  - action: move
    x: 600
    y: 510
  - action: up
`

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var creativeOut, brandOut, scriptOut, configOut string
	fs.StringVar(&creativeOut, "creative", "creative.json", "Output path for sample creative")
	fs.StringVar(&brandOut, "brand", "brand.json", "Output path for sample brand settings")
	fs.StringVar(&scriptOut, "script", "script.yaml", "Output path for sample script")
	fs.StringVar(&configOut, "config", "golayers.yaml", "Output path for default config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := yaml.Marshal(editor.DefaultConfig())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	files := []struct {
		path string
		data []byte
	}{
		{creativeOut, []byte(sampleCreative)},
		{brandOut, []byte(sampleBrand)},
		{scriptOut, []byte(sampleScript)},
		{configOut, cfg},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, f.data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
	}

	fmt.Printf("Created: %s, %s, %s, %s\n", creativeOut, brandOut, scriptOut, configOut)
	fmt.Printf("Run: golayers -o ad.png --creative %s --brand %s --script %s --config %s\n",
		creativeOut, brandOut, scriptOut, configOut)
	return nil
}
