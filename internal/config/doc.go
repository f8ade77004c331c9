// Package config provides configuration parsing for the reactobs server.
//
// The configuration is stored in reactobs.json (or reactobs.yaml) in the
// working directory, or in a file passed with --config. Missing fields
// take their defaults.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "address": ":6666",
//	    "adminAddress": "127.0.0.1:6667",
//	    "shutdownTimeout": "5s"
//	  },
//	  "layout": {
//	    "tickInterval": "16ms"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "compositor": {
//	    "canvasWidth": 1920,
//	    "canvasHeight": 1080,
//	    "sources": [
//	      {"name": "Scene", "kind": "scene"},
//	      {"name": "Camera", "width": 1280, "height": 720}
//	    ]
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.Server.Address)
package config
