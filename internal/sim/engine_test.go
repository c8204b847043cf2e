package sim

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/tui-defence/internal/config"
	"github.com/vovakirdan/tui-defence/internal/core"
	"github.com/vovakirdan/tui-defence/internal/entity"
	"github.com/vovakirdan/tui-defence/internal/mailbox"
	"github.com/vovakirdan/tui-defence/internal/protocol"
)

type harness struct {
	engine *Engine
	inbox  *mailbox.Mailbox[protocol.SimCommand]
	render *mailbox.Mailbox[protocol.RenderMessage]
	notify *mailbox.Mailbox[protocol.Notification]
}

func newHarness(rules config.Config, seed int64) *harness {
	h := &harness{
		inbox:  mailbox.New[protocol.SimCommand](),
		render: mailbox.New[protocol.RenderMessage](),
		notify: mailbox.New[protocol.Notification](),
	}
	h.engine = New(rules, h.inbox, h.render, h.notify, WithRand(rand.New(rand.NewSource(seed))))
	return h
}

func drain[T any](m *mailbox.Mailbox[T]) []T {
	var out []T
	for {
		v, ok := m.TryTake()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func onlyGun(t *testing.T, e *Engine) *slot[entity.Gun] {
	t.Helper()
	var found *slot[entity.Gun]
	e.guns.Each(func(_ int64, s *slot[entity.Gun]) bool {
		found = s
		return false
	})
	if found == nil {
		t.Fatal("no gun in arena")
	}
	return found
}

func TestMachineGunFiresProjectile(t *testing.T) {
	h := newHarness(config.Default(), 1)
	h.engine.addGun(entity.GunMachine, 0, core.NewPolar(50, 0))
	drain(h.render)

	h.engine.updateGuns()

	if h.engine.projectiles.Len() != 1 {
		t.Fatalf("projectiles = %d, expected 1", h.engine.projectiles.Len())
	}
	h.engine.projectiles.Each(func(_ int64, s *slot[entity.Projectile]) bool {
		if math.Abs(s.obj.Position.R-50.1) > 1e-12 || s.obj.Position.Phi != 0 {
			t.Errorf("projectile at %+v, expected (50.1, 0)", s.obj.Position)
		}
		if s.obj.Level != 0 {
			t.Errorf("projectile level = %d, expected 0", s.obj.Level)
		}
		return true
	})
	if skip := onlyGun(t, h.engine).skip; skip != entity.NumLevels*5 {
		t.Errorf("gun skip = %d, expected %d", skip, entity.NumLevels*5)
	}

	msgs := drain(h.render)
	if len(msgs) != 1 {
		t.Fatalf("render messages = %d, expected 1", len(msgs))
	}
	np, ok := msgs[0].(protocol.NewProjectile)
	if !ok {
		t.Fatalf("message = %T, expected NewProjectile", msgs[0])
	}
	if math.Abs(np.Position.R-50.1) > 1e-12 {
		t.Errorf("NewProjectile at r=%v, expected 50.1", np.Position.R)
	}
}

func TestSkipCounterDelaysNextShot(t *testing.T) {
	h := newHarness(config.Default(), 1)
	h.engine.addGun(entity.GunMachine, 0, core.NewPolar(50, 0))

	for i := 0; i < 26; i++ {
		h.engine.updateGuns()
	}
	if n := h.engine.projectiles.Len(); n != 1 {
		t.Fatalf("after 26 passes: projectiles = %d, expected 1", n)
	}

	h.engine.updateGuns()
	if n := h.engine.projectiles.Len(); n != 2 {
		t.Errorf("after 27 passes: projectiles = %d, expected 2", n)
	}
}

func TestMineDetonation(t *testing.T) {
	h := newHarness(config.Default(), 1)
	h.engine.addGun(entity.GunMine, 0, core.NewPolar(20, 0))
	m := h.engine.addMonster(entity.MonsterSlow, core.NewPolar(20.5, 0), 50)
	money := h.engine.money
	drain(h.render)

	h.engine.updateMonsters()

	// The monster overlaps the mine, so the clamped distance is zero and
	// the full 130 damage applies.
	if m.Life != 0 {
		t.Errorf("monster life = %v, expected 0", m.Life)
	}
	if h.engine.monstersAlive != 0 {
		t.Errorf("monstersAlive = %d, expected 0", h.engine.monstersAlive)
	}
	mine := onlyGun(t, h.engine)
	if mine.obj.Life != 0 {
		t.Errorf("mine life = %v, expected 0", mine.obj.Life)
	}
	if h.engine.money != money+h.engine.rules.KillReward(int(entity.MonsterSlow)) {
		t.Errorf("money = %d, expected kill reward to be added", h.engine.money)
	}

	msgs := drain(h.render)
	if len(msgs) < 2 {
		t.Fatalf("render messages = %v", msgs)
	}
	if _, ok := msgs[0].(protocol.MineBlow); !ok {
		t.Errorf("first message = %T, expected MineBlow", msgs[0])
	}
	if _, ok := msgs[1].(protocol.MonsterDied); !ok {
		t.Errorf("second message = %T, expected MonsterDied", msgs[1])
	}

	h.engine.updateGuns()
	if h.engine.guns.Len() != 0 {
		t.Error("blown mine should be removed on the next gun pass")
	}
	for _, msg := range drain(h.render) {
		if _, ok := msg.(protocol.GunDied); ok {
			t.Error("blown mine should not produce GunDied")
		}
	}
}

func TestMineFalloffStunsSurvivor(t *testing.T) {
	h := newHarness(config.Default(), 1)
	h.engine.addGun(entity.GunMine, 0, core.NewPolar(20, 0))
	// Contact at distance 1.6; both radii exceed it, so the blast distance
	// clamps to 0 and the full 130 applies to a monster that survives it.
	m := h.engine.addMonster(entity.MonsterSlow, core.NewPolar(21.6, 0), 500)

	h.engine.updateMonsters()

	if m.Life != 370 {
		t.Errorf("monster life = %v, expected 370", m.Life)
	}
	var skip int
	h.engine.monsters.Each(func(_ int64, s *slot[entity.Monster]) bool {
		skip = s.skip
		return true
	})
	if skip != entity.StunTicksStep {
		t.Errorf("stun = %d, expected %d", skip, entity.StunTicksStep)
	}
}

func TestMonsterReachesTower(t *testing.T) {
	h := newHarness(config.Default(), 1)
	h.engine.addMonster(entity.MonsterSlow, core.NewPolar(7.3, 1), 100)
	money := h.engine.money

	h.engine.updateMonsters()

	if h.engine.towerHealth != 990 {
		t.Errorf("tower health = %v, expected 990", h.engine.towerHealth)
	}
	if h.engine.monsters.Len() != 0 {
		t.Error("monster should be removed")
	}
	if h.engine.money != money {
		t.Errorf("money = %d, expected unchanged %d", h.engine.money, money)
	}

	var sawHealth bool
	for _, n := range drain(h.notify) {
		if th, ok := n.(protocol.TowerHealthChanged); ok && th.Health == 990 {
			sawHealth = true
		}
	}
	if !sawHealth {
		t.Error("expected TowerHealthChanged(990)")
	}
}

func TestMonsterPassStopsWhenTowerFalls(t *testing.T) {
	rules := config.Default()
	rules.Tower.Health = 5
	h := newHarness(rules, 1)
	h.engine.addMonster(entity.MonsterSlow, core.NewPolar(7.2, 0), 100)
	h.engine.addMonster(entity.MonsterSlow, core.NewPolar(7.2, 2), 100)

	h.engine.updateMonsters()

	if h.engine.towerHealth != 0 {
		t.Errorf("tower health = %v, expected 0", h.engine.towerHealth)
	}
	if h.engine.monsters.Len() != 1 {
		t.Errorf("monsters = %d, expected the second monster to be left untouched", h.engine.monsters.Len())
	}
}

func TestMonsterStepLength(t *testing.T) {
	h := newHarness(config.Default(), 42)
	rng := rand.New(rand.NewSource(7))

	for _, typ := range []entity.MonsterType{entity.MonsterSlow, entity.MonsterFast, entity.MonsterVomiting} {
		for i := 0; i < 200; i++ {
			start := core.NewPolar(10+rng.Float64()*100, rng.Float64()*2*math.Pi)
			m := &entity.Monster{Type: typ, Position: start, Life: 100}

			h.engine.stepMonster(m)

			d := core.PolarDistance(start, m.Position)
			s := typ.Speed()
			if d < s*(1-stepJitter)-1e-9 || d > s+1e-9 {
				t.Fatalf("%s from %+v: step = %v, expected within [%v, %v]", typ, start, d, s*(1-stepJitter), s)
			}
			if m.Position.R >= start.R {
				t.Fatalf("%s: radius did not decrease (%v -> %v)", typ, start.R, m.Position.R)
			}
		}
	}
}

func TestSweepDistance(t *testing.T) {
	// Monster directly on the ray halfway through the step.
	if d := sweepDistance(10, 10.1, 0, core.NewPolar(10.05, 0)); d > 1e-9 {
		t.Errorf("on-ray distance = %v, expected 0", d)
	}

	// Monster 0.05 off the ray, abreast of the middle of the step.
	phi := math.Asin(0.05 / 10.05)
	d := sweepDistance(10, 10.1, 0, core.NewPolar(10.05, phi))
	if math.Abs(d-0.05) > 1e-6 {
		t.Fatalf("off-ray distance = %v, expected 0.05", d)
	}
	if !(d < 0.06) {
		t.Error("radius sum 0.06 should hit")
	}
	if d < 0.04 {
		t.Error("radius sum 0.04 should miss")
	}

	// Symmetric under swapping sides of the ray.
	if d2 := sweepDistance(10, 10.1, 0, core.NewPolar(10.05, -phi)); math.Abs(d-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", d, d2)
	}
}

func TestProjectileHitsOncePerTick(t *testing.T) {
	h := newHarness(config.Default(), 1)
	a := h.engine.addMonster(entity.MonsterSlow, core.NewPolar(10.05, 0), 100)
	b := h.engine.addMonster(entity.MonsterSlow, core.NewPolar(10.06, 0), 100)
	h.engine.addProjectile(0, core.NewPolar(10, 0))
	drain(h.render)

	h.engine.updateProjectiles()

	if a.Life != 80 {
		t.Errorf("first monster life = %v, expected 80", a.Life)
	}
	if b.Life != 100 {
		t.Errorf("second monster life = %v, expected untouched", b.Life)
	}
	if h.engine.projectiles.Len() != 0 {
		t.Error("projectile should be removed after hit")
	}
	msgs := drain(h.render)
	if len(msgs) != 1 {
		t.Fatalf("render messages = %v, expected one ProjectileHit", msgs)
	}
	if _, ok := msgs[0].(protocol.ProjectileHit); !ok {
		t.Errorf("message = %T, expected ProjectileHit", msgs[0])
	}
}

func TestProjectileCulledOffscreen(t *testing.T) {
	h := newHarness(config.Default(), 1)
	h.engine.addProjectile(4, core.NewPolar(113, 1))

	h.engine.updateProjectiles()
	if h.engine.projectiles.Len() != 1 {
		t.Fatal("projectile at 117.1 should survive")
	}
	h.engine.updateProjectiles()
	if h.engine.projectiles.Len() != 0 {
		t.Error("projectile beyond 1.2x visibility should be removed")
	}
}

func TestLaserSweep(t *testing.T) {
	h := newHarness(config.Default(), 1)
	h.engine.addGun(entity.GunLaser, 0, core.NewPolar(20, 0))
	inRay := h.engine.addMonster(entity.MonsterSlow, core.NewPolar(30, 0.05), 100)
	offRay := h.engine.addMonster(entity.MonsterSlow, core.NewPolar(30, 0.2), 100)
	behind := h.engine.addMonster(entity.MonsterSlow, core.NewPolar(15, 0), 100)
	wrapped := h.engine.addMonster(entity.MonsterSlow, core.NewPolar(30, 2*math.Pi-0.05), 100)
	drain(h.render)

	h.engine.updateGuns()

	if inRay.Life != 60 {
		t.Errorf("monster in ray life = %v, expected 60", inRay.Life)
	}
	if wrapped.Life != 60 {
		t.Errorf("monster across 2π in ray life = %v, expected 60", wrapped.Life)
	}
	if offRay.Life != 100 {
		t.Errorf("monster off ray life = %v, expected 100", offRay.Life)
	}
	if behind.Life != 100 {
		t.Errorf("monster behind gun life = %v, expected 100", behind.Life)
	}
	if skip := onlyGun(t, h.engine).skip; skip != entity.NumLevels*7 {
		t.Errorf("laser skip = %d, expected %d", skip, entity.NumLevels*7)
	}

	msgs := drain(h.render)
	if len(msgs) == 0 {
		t.Fatal("expected LaserFired")
	}
	if lf, ok := msgs[0].(protocol.LaserFired); !ok || lf.GunID != 0 {
		t.Errorf("message = %#v, expected LaserFired{0}", msgs[0])
	}
}

func TestVomitingMonsterAttacksAtRange(t *testing.T) {
	h := newHarness(config.Default(), 1)
	h.engine.addGun(entity.GunMachine, 0, core.NewPolar(26, 0.05))
	m := h.engine.addMonster(entity.MonsterVomiting, core.NewPolar(30, 0), 140)
	drain(h.render)

	h.engine.updateMonsters()

	gun := onlyGun(t, h.engine)
	if gun.obj.Life != 70 {
		t.Errorf("gun life = %v, expected 70", gun.obj.Life)
	}
	if m.Position.R != 30 {
		t.Error("vomiting monster should not move while attacking")
	}
	var skip int
	h.engine.monsters.Each(func(_ int64, s *slot[entity.Monster]) bool {
		skip = s.skip
		return true
	})
	if skip != entity.VomitCooldown {
		t.Errorf("vomit cooldown = %d, expected %d", skip, entity.VomitCooldown)
	}

	msgs := drain(h.render)
	if len(msgs) != 1 {
		t.Fatalf("render messages = %v", msgs)
	}
	if v, ok := msgs[0].(protocol.MonsterVomit); !ok || v.MonsterID != m.ID {
		t.Errorf("message = %#v, expected MonsterVomit", msgs[0])
	}
}

func TestVomitIgnoresGunsBehind(t *testing.T) {
	if inVomitArea(core.NewPolar(30, 0), core.NewPolar(34, 0.02), 0.16) {
		t.Error("gun behind the monster should not be in the vomit area")
	}
	if !inVomitArea(core.NewPolar(30, 0), core.NewPolar(26, 0.02), 0.16) {
		t.Error("gun in front of the monster should be in the vomit area")
	}
}

func TestMeleeDamagesGun(t *testing.T) {
	h := newHarness(config.Default(), 1)
	h.engine.addGun(entity.GunMachine, 0, core.NewPolar(20, 0))
	m := h.engine.addMonster(entity.MonsterSlow, core.NewPolar(20.5, 0), 100)

	h.engine.updateMonsters()

	if life := onlyGun(t, h.engine).obj.Life; life != 73 {
		t.Errorf("gun life = %v, expected 73", life)
	}
	if m.Position.R >= 20.5 {
		t.Error("monster should keep moving while biting")
	}
}

func TestGunDestroyedIsRemoved(t *testing.T) {
	h := newHarness(config.Default(), 1)
	h.engine.addGun(entity.GunMachine, 0, core.NewPolar(20, 0))
	onlyGun(t, h.engine).obj.Life = 5
	h.engine.addMonster(entity.MonsterSlow, core.NewPolar(20.5, 0), 100)
	drain(h.render)

	h.engine.updateMonsters()

	var died bool
	for _, msg := range drain(h.render) {
		if _, ok := msg.(protocol.GunDied); ok {
			died = true
		}
	}
	if !died {
		t.Fatal("expected GunDied")
	}

	h.engine.updateGuns()
	if h.engine.guns.Len() != 0 {
		t.Error("dead gun should be removed on the next gun pass")
	}
}

func TestPlaceGunRejectedWithoutFunds(t *testing.T) {
	rules := config.Default()
	rules.Economy.InitialMoney = 100
	h := newHarness(rules, 1)

	err := h.engine.placeGun(protocol.PlaceGun{Type: entity.GunMachine, Level: 0, Position: core.NewPolar(30, 1)})
	if err != nil {
		t.Fatalf("placeGun error: %v", err)
	}
	if h.engine.money != 100 {
		t.Errorf("money = %d, expected 100", h.engine.money)
	}
	if h.engine.guns.Len() != 0 {
		t.Error("no gun should be created")
	}
	if len(drain(h.render)) != 0 || len(drain(h.notify)) != 0 {
		t.Error("rejected purchase should emit nothing")
	}
}

func TestPlaceGunSucceeds(t *testing.T) {
	h := newHarness(config.Default(), 1)

	err := h.engine.placeGun(protocol.PlaceGun{Type: entity.GunLaser, Level: 1, Position: core.NewPolar(30, 1)})
	if err != nil {
		t.Fatalf("placeGun error: %v", err)
	}
	if h.engine.money != 200 {
		t.Errorf("money = %d, expected 200", h.engine.money)
	}
	if life := onlyGun(t, h.engine).obj.Life; life != 100 {
		t.Errorf("gun life = %v, expected 100", life)
	}

	msgs := drain(h.render)
	if len(msgs) != 1 {
		t.Fatalf("render messages = %v", msgs)
	}
	if ng, ok := msgs[0].(protocol.NewGun); !ok || ng.Type != entity.GunLaser || ng.Level != 1 {
		t.Errorf("message = %#v, expected NewGun", msgs[0])
	}

	notes := drain(h.notify)
	if len(notes) != 2 {
		t.Fatalf("notifications = %v", notes)
	}
	if mc, ok := notes[0].(protocol.MoneyChanged); !ok || mc.Money != 200 {
		t.Errorf("notification = %#v, expected MoneyChanged{200}", notes[0])
	}
	if _, ok := notes[1].(protocol.GunPlaced); !ok {
		t.Errorf("notification = %#v, expected GunPlaced", notes[1])
	}
}

func TestPlaceGunInvalid(t *testing.T) {
	h := newHarness(config.Default(), 1)
	h.inbox.Send(protocol.PlaceGun{Type: entity.GunType(9), Level: 0})

	_, err := h.engine.Run()
	if !errors.Is(err, ErrInvalidGun) {
		t.Errorf("Run() error = %v, expected ErrInvalidGun", err)
	}
}

type bogusCommand struct {
	protocol.ContinueSimulation
}

func TestUnknownCommandIsFatal(t *testing.T) {
	h := newHarness(config.Default(), 1)
	h.inbox.Send(bogusCommand{})

	outcome, err := h.engine.Run()
	if !errors.Is(err, protocol.ErrUnknownMessage) {
		t.Errorf("Run() error = %v, expected ErrUnknownMessage", err)
	}
	if outcome != OutcomeAborted {
		t.Errorf("outcome = %s, expected aborted", outcome)
	}
}

func smallRules() config.Config {
	rules := config.Default()
	rules.Waves.Count = 2
	rules.Waves.MonstersPerWave = 1
	rules.Waves.DelaySeconds = 0
	rules.Waves.SpawnRadius = 8
	rules.Waves.SpawnRadiusStep = 0
	return rules
}

func TestWavesRunToVictory(t *testing.T) {
	h := newHarness(smallRules(), 3)
	for i := 0; i < 200; i++ {
		h.inbox.Send(protocol.ContinueSimulation{})
	}
	h.inbox.Close()

	outcome, err := h.engine.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if outcome != OutcomeWon {
		t.Fatalf("outcome = %s, expected won", outcome)
	}

	// A wave never starts while a monster of the previous wave is alive.
	waveOf := func(id int64) int {
		first := int64(0)
		for w := 1; ; w++ {
			n := int64(w * h.engine.rules.Waves.MonstersPerWave)
			if id < first+n {
				return w
			}
			first += n
		}
	}
	alive := map[int64]bool{}
	for _, msg := range drain(h.render) {
		switch m := msg.(type) {
		case protocol.NewMonster:
			for id := range alive {
				if waveOf(id) < waveOf(m.ID) {
					t.Fatalf("monster %d of wave %d still alive when wave %d spawned", id, waveOf(id), waveOf(m.ID))
				}
			}
			alive[m.ID] = true
		case protocol.MonsterDied:
			delete(alive, m.ID)
		}
	}
	if len(alive) != 0 {
		t.Errorf("monsters still alive after victory: %v", alive)
	}

	var waves []int
	var over *protocol.GameOver
	for _, n := range drain(h.notify) {
		switch n := n.(type) {
		case protocol.WaveStarted:
			waves = append(waves, n.Wave)
		case protocol.GameOver:
			over = &n
		}
	}
	if !reflect.DeepEqual(waves, []int{1, 2}) {
		t.Errorf("waves = %v, expected [1 2]", waves)
	}
	if over == nil || !over.Won {
		t.Errorf("GameOver = %+v, expected won", over)
	}
}

func TestWavesEndInDefeat(t *testing.T) {
	rules := smallRules()
	rules.Tower.Health = 1
	h := newHarness(rules, 3)
	for i := 0; i < 200; i++ {
		h.inbox.Send(protocol.ContinueSimulation{})
	}
	h.inbox.Close()

	outcome, err := h.engine.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if outcome != OutcomeLost {
		t.Fatalf("outcome = %s, expected lost", outcome)
	}

	notes := drain(h.notify)
	last, ok := notes[len(notes)-1].(protocol.GameOver)
	if !ok || last.Won {
		t.Errorf("last notification = %#v, expected GameOver{Won: false}", notes[len(notes)-1])
	}
	if h.inbox.Len() == 0 {
		t.Error("engine should stop consuming commands after defeat")
	}
}

func TestPassiveIncomeAndWaveDelay(t *testing.T) {
	rules := smallRules()
	rules.Waves.DelaySeconds = 10
	h := newHarness(rules, 1)
	h.engine.now = func() time.Time { return time.Unix(0, 0) }

	for i := 0; i < 3; i++ {
		h.inbox.Send(protocol.ContinueSimulation{})
	}
	h.inbox.Close()

	outcome, _ := h.engine.Run()
	if outcome != OutcomeAborted {
		t.Errorf("outcome = %s, expected aborted", outcome)
	}
	if h.engine.money != 1030 {
		t.Errorf("money = %d, expected 1030", h.engine.money)
	}
	if h.engine.monsters.Len() != 0 {
		t.Error("no monsters should spawn before the wave delay elapses")
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() []protocol.RenderMessage {
		h := newHarness(config.Default(), 99)
		h.engine.addGun(entity.GunLaser, 2, core.NewPolar(40, 1))
		h.engine.spawnWave(2)
		for i := 0; i < 50; i++ {
			h.engine.step()
		}
		return drain(h.render)
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Error("runs with the same seed should produce identical event streams")
	}
}
