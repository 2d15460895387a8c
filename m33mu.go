// This file is part of m33mu-go.
//
// m33mu-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// m33mu-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with m33mu-go.  If not, see <https://www.gnu.org/licenses/>.

// Package m33mu wires the register file, address space, security
// attribution, exception controller, executor and run loop described by
// spec.md §2 into a single embeddable Machine. Everything else in this
// module is a leaf package Machine assembles; nothing downstream of it
// imports m33mu itself.
package m33mu

import (
	"github.com/m33mu-go/m33mu/cpu"
	"github.com/m33mu-go/m33mu/executor"
	"github.com/m33mu-go/m33mu/memory"
	"github.com/m33mu-go/m33mu/mmio"
	"github.com/m33mu-go/m33mu/nvic"
	"github.com/m33mu-go/m33mu/peripherals"
	"github.com/m33mu-go/m33mu/runloop"
	"github.com/m33mu-go/m33mu/target"
	"github.com/m33mu-go/m33mu/trustzone"
)

// Illustrative peripheral placement: a handful of fixed MMIO addresses in
// the Cortex-M33 default peripheral region (0x4000_0000-range), the
// window every built-in target.Config leaves free for SoC adapters.
const (
	rngBase   = 0x40020000
	timerBase = 0x40021000
	timerIRQ  = 0

	// timerTickPeriod is the Scheduler due-cycle interval between timer
	// advances; coarse, matching spec.md §9's cycle model.
	timerTickPeriod = 1000
)

// Machine is one complete emulator core bound to a target.Config: every
// subsystem spec.md's component table lists, assembled and ready to Reset
// and Step.
type Machine struct {
	Config target.Config

	CPU  *cpu.State
	Mem  *memory.Map
	SAU  *trustzone.SAU
	NVIC *nvic.Controller
	Exec *executor.Machine
	Loop *runloop.Loop

	RNG   *peripherals.RNG
	Timer *peripherals.Timer

	// MPU holds the banked Secure/NonSecure protection units spec.md §4.3
	// describes. Both start disabled (unrestricted), matching the
	// architectural reset state; an SoC adapter or test populates regions
	// and sets Enabled through these directly.
	MPU [2]*trustzone.MPU
}

// New assembles a Machine for cfg: flash/RAM banks, an empty MMIO bus
// with the illustrative RNG/timer pair registered, a disabled SAU, and a
// run loop wired to drive them. It does not reset the core; call Reset
// before the first Step, or rely on Loop.RequestReset from the embedder.
func New(cfg target.Config) *Machine {
	flash := memory.NewBank(cfg.FlashBaseSecure, cfg.FlashBaseNonSecure, cfg.FlashSize, cfg.SharedFlashBacking)
	ram := memory.NewBank(cfg.RAMBaseSecure, cfg.RAMBaseNonSecure, cfg.RAMSize, cfg.SharedRAMBacking)
	bus := mmio.NewBus()
	mem := memory.NewMap(flash, ram, bus)

	c := cpu.NewState()
	sau := trustzone.NewSAU()
	nv := nvic.NewController(c, mem, sau)
	exec := &executor.Machine{CPU: c, Mem: mem, SAU: sau, NVIC: nv}

	m := &Machine{
		Config: cfg,
		CPU:    c,
		Mem:    mem,
		SAU:    sau,
		NVIC:   nv,
		Exec:   exec,
		RNG:    peripherals.NewRNG(),
		Timer:  peripherals.NewTimer(timerIRQ),
		MPU:    [2]*trustzone.MPU{trustzone.NewMPU(), trustzone.NewMPU()},
	}
	mem.SAU = sau
	mem.MPU = m.MPU
	mem.Privileged = m.privileged

	bus.Register(mmio.Region{Base: rngBase, Size: 0x10, Name: "rng", Handler: m.RNG})
	bus.Register(mmio.Region{Base: timerBase, Size: 0x10, Name: "timer", Handler: m.Timer})

	if cfg.FlashBind != nil {
		cfg.FlashBind()
	}
	if cfg.SoCRegisterMMIO != nil {
		cfg.SoCRegisterMMIO()
	}

	m.Loop = runloop.New(c, mem, exec, nv)
	m.Loop.Reset = m.Reset
	m.scheduleTimerTick(timerTickPeriod)

	return m
}

// scheduleTimerTick installs a self-rescheduling Scheduler entry that
// advances the illustrative timer every timerTickPeriod cycles, the
// pattern spec.md §4.6 describes ("Callbacks may re-insert themselves").
func (m *Machine) scheduleTimerTick(due uint64) {
	m.Loop.Scheduler.Schedule(due, func() {
		m.Timer.Step(timerTickPeriod, m.NVIC)
		m.scheduleTimerTick(due + timerTickPeriod)
	})
}

// Reset implements spec.md §6's reset-vector contract: read MSP_S and the
// initial PC from the first 8 bytes of Secure flash, clear all register
// and exception state, enter Secure Thread mode, and point VTOR_S at the
// flash base. SoCReset, if configured, runs last so adapter code sees a
// fully reset core.
func (m *Machine) Reset() {
	msp, _, _, _ := m.Mem.Read(cpu.Secure, m.Config.FlashBaseSecure, 4)
	pc, _, _, _ := m.Mem.Read(cpu.Secure, m.Config.FlashBaseSecure+4, 4)

	m.CPU.Reset(msp, pc)
	m.CPU.SetVTOR(cpu.Secure, m.Config.FlashBaseSecure)

	m.SAU.Enabled = false
	m.SAU.AllNS = false
	m.SAU.Regions = nil
	for _, mpu := range m.MPU {
		*mpu = trustzone.MPU{}
	}

	m.NVIC.Reset()
	m.RNG.Reset()
	m.Timer.Reset()
	m.Loop.Cycles = 0

	if m.Config.SoCReset != nil {
		m.Config.SoCReset()
	}
}

// privileged reports whether the access currently in flight runs at
// privileged level, implementing memory.Map's Privileged hook: Handler
// mode is always privileged, and in Thread mode it follows CONTROL.nPRIV
// (bit 0) of the currently executing security state.
func (m *Machine) privileged() bool {
	if m.CPU.Status().ExceptionNumber() != 0 {
		return true
	}
	return m.CPU.CurrentCONTROL()&0x1 == 0
}

// Step advances the core by exactly one run-loop iteration.
func (m *Machine) Step() { m.Loop.Step() }

// Run advances the core by n run-loop iterations.
func (m *Machine) Run(n uint64) { m.Loop.Run(n) }
