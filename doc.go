// Package hexapod drives a six-legged walking robot built from hobby servos
// on PCA9685 boards.
//
// Every servo is calibrated once into a YAML file: its pulse range, whether
// it is mounted mirrored, and the named endpoints (forward, back, up, down,
// center) as a percent of that range. Gaits are expressed against those
// endpoints so the same walk works on any calibrated build.
//
// # Installation
//
//	go install github.com/gwillem/hexapod/cmd/hexapod@latest
//
// # Usage
//
// Calibrate the servos, then start the command server:
//
//	hexapod calibrate -c hexapod.yaml
//	hexapod serve -c hexapod.yaml --http :8080
//
// and drive it from another terminal:
//
//	hexapod client -a robot.local:5000
//	 -> walk 4
//	 -> turn_left 2
//	 -> sit
//
// # Packages
//
//   - cmd/hexapod: CLI with serve, run, client, calibrate and scan commands
//   - pkg/robot: boards, joints, legs and the calibration file
//   - pkg/gait: postures, gaits and the script engine that executes them
//   - pkg/command: text command parsing and dispatch
//   - pkg/server: TCP, WebSocket and NATS front ends
//   - pkg/client: line client for the TCP server
//   - pkg/metric: Prometheus metrics
package hexapod
