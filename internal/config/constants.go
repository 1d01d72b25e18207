package config

const (
	// Configuration file paths
	ConfigPathContent = "configs/content.json"
)
