package gpio_test

import (
	"testing"

	"github.com/ljsdev/goba/internal/cartridge/gpio"
)

func TestPortDisabledByDefault(t *testing.T) {
	p := gpio.NewPort()
	if p.Enabled() {
		t.Fatalf("expected a freshly constructed port to not intercept ROM reads")
	}
	if got := p.ReadRegister(0); got != 0 {
		t.Fatalf("expected reads to return 0 while the port is disabled, got %#x", got)
	}
}

func TestWritingControlRegisterEnablesPort(t *testing.T) {
	p := gpio.NewPort()
	p.WriteRegister(4, 1) // control register, bit 0 = read/write enable

	if !p.Enabled() {
		t.Fatalf("expected writing 1 to the control register to enable the port")
	}
	if got := p.ReadRegister(4); got != 1 {
		t.Fatalf("expected control register readback of 1, got %#x", got)
	}
}

func TestDirectionRegisterRoundTrips(t *testing.T) {
	p := gpio.NewPort()
	p.WriteRegister(4, 1)
	p.WriteRegister(2, 0x7) // SCK/SIO/CS as outputs

	if got := p.ReadRegister(2); got != 0x7 {
		t.Fatalf("expected direction register readback of 0x7, got %#x", got)
	}
}
