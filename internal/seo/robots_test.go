// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
	"testing"
)

func TestGenerateRobots(t *testing.T) {
	tests := []struct {
		name       string
		cfg        RobotsConfig
		contains   []string
		notContain []string
	}{
		{
			name: "production",
			cfg:  RobotsConfig{SiteURL: "https://example.com/"},
			contains: []string{
				"User-agent: *\n",
				"Disallow: /api/v1/admin\n",
				"Allow: /\n",
				"Sitemap: https://example.com/sitemap.xml\n",
			},
			notContain: []string{"Disallow: /\n"},
		},
		{
			name:       "disallow all",
			cfg:        RobotsConfig{SiteURL: "https://example.com", DisallowAll: true},
			contains:   []string{"User-agent: *\n", "Disallow: /\n"},
			notContain: []string{"Sitemap:", "Allow: /\n"},
		},
		{
			name:       "extra paths without site",
			cfg:        RobotsConfig{DisallowPaths: []string{"/drafts"}},
			contains:   []string{"Disallow: /api/v1/admin\n", "Disallow: /drafts\n"},
			notContain: []string{"Sitemap:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateRobots(tt.cfg)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("robots.txt missing %q:\n%s", want, got)
				}
			}
			for _, bad := range tt.notContain {
				if strings.Contains(got, bad) {
					t.Errorf("robots.txt should not contain %q:\n%s", bad, got)
				}
			}
		})
	}
}

func TestGenerateRobotsDoesNotShareDefaults(t *testing.T) {
	_ = GenerateRobots(RobotsConfig{DisallowPaths: []string{"/one"}})
	got := GenerateRobots(RobotsConfig{})
	if strings.Contains(got, "/one") {
		t.Errorf("paths leaked between calls:\n%s", got)
	}
}
