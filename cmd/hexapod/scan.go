package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"
)

type ScanCommand struct {
	Port  string `short:"p" long:"port" description:"Only scan this serial port"`
	MaxID int    `long:"max-id" default:"20" description:"Highest servo ID to probe"`
	Baud  int    `long:"baud" default:"1000000" description:"Bus baud rate"`
}

func (c *ScanCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Servo scan"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━"))

	ports := []string{c.Port}
	if c.Port == "" {
		var err error
		ports, err = serial.GetPortsList()
		if err != nil {
			return fmt.Errorf("list serial ports: %w", err)
		}
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		fmt.Println("PCA9685 boards sit on I2C; list them in the calibration file directly.")
		return nil
	}

	var rows [][]string
	for _, port := range busCandidates(ports) {
		servos, err := c.scanPort(port)
		if err != nil {
			rows = append(rows, []string{port, "-", dimStyle.Render(err.Error())})
			continue
		}
		if len(servos) == 0 {
			rows = append(rows, []string{port, "-", dimStyle.Render("no servos")})
		}
		for _, s := range servos {
			rows = append(rows, []string{port, fmt.Sprintf("%d", s.ID), fmt.Sprintf("%v", s.Model)})
		}
	}

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Port", "ID", "Model").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
	fmt.Println(t.Render())
	fmt.Println(dimStyle.Render("Feetech boards use driver: feetech with port: <device>; servo channel is the servo ID."))
	return nil
}

// pseudoPorts are serial devices macOS always lists that never carry a
// servo bus. Probing them only costs the scan timeout per ID.
var pseudoPorts = []string{"Bluetooth", "debug-console", "wlan-debug"}

func busCandidates(ports []string) []string {
	var out []string
	for _, port := range ports {
		if !slices.ContainsFunc(pseudoPorts, func(p string) bool { return strings.Contains(port, p) }) {
			out = append(out, port)
		}
	}
	return out
}

func (c *ScanCommand) scanPort(port string) ([]feetech.FoundServo, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: c.Baud,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return bus.Scan(ctx, 1, c.MaxID)
}
