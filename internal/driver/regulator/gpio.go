package regulator

import "github.com/socfw/scp/internal/driver/gpio"

// GPIORegulator backs a single discrete on/off rail with one GPIO pin,
// grounded on drivers/regulator/gpio.c's gpio_regulator: boards that switch
// a rail with a plain enable line, rather than through a PMIC, use this
// instead of a regulator.Controller backed by bus-register ops. The rail id
// is unused since a GPIO-backed rail is always a single pin.
type GPIORegulator struct {
	Pin gpio.Handle
}

func (r GPIORegulator) SetState(_ uint8, enable bool) error {
	return gpio.SetValue(r.Pin, enable)
}

func (r GPIORegulator) GetState(uint8) (bool, error) {
	return gpio.GetValue(r.Pin)
}
