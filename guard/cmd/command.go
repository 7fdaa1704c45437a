// Package cmd implements the player-facing command surface of claimguard.
// The host registers the built-in claim commands on an Env and forwards chat
// command lines to ExecuteLine; everything below that is host-independent.
package cmd

import (
	"strings"
	"sync"

	"github.com/dm-vev/claimguard/guard"
	"github.com/dm-vev/claimguard/guard/lang"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Source is the sender of a command, usually a player.
type Source interface {
	// Name returns the display name of the source.
	Name() string
	// UUID returns the unique id of the source, or uuid.Nil for non-player
	// sources such as the console.
	UUID() uuid.UUID
	// Position returns the current position of the source.
	Position() mgl64.Vec3
	// World returns the name of the world the source is in.
	World() string
	// Locale returns the language of the source.
	Locale() language.Tag
	// Operator reports if the source may run administrative commands.
	Operator() bool
}

// Runnable is the implementation of one command.
type Runnable interface {
	// Run executes the command for the source passed with the arguments
	// passed, writing results to the Output.
	Run(env *Env, src Source, o *Output, args []string)
}

// Command is a named, registrable command.
type Command struct {
	name        string
	description string
	usage       string
	aliases     []string
	operator    bool
	r           Runnable
}

// New creates a Command with the name, description and usage line passed.
func New(name, description, usage string, aliases []string, r Runnable) Command {
	return Command{name: name, description: description, usage: usage, aliases: aliases, r: r}
}

// Name returns the primary name of the command.
func (c Command) Name() string { return c.name }

// Description returns the one-line description of the command.
func (c Command) Description() string { return c.description }

// Usage returns the usage line of the command, without the leading slash.
func (c Command) Usage() string { return c.usage }

// Aliases returns the alternative names of the command.
func (c Command) Aliases() []string { return c.aliases }

// RequiresOperator returns a copy of the command that may only be run by
// operator sources.
func (c Command) RequiresOperator() Command {
	c.operator = true
	return c
}

// Env holds the shared state of the command layer: the engine operated on,
// the message catalogue and the host's player name lookup.
type Env struct {
	// Engine is the claim engine the commands operate on.
	Engine *guard.Engine
	// Messages is the catalogue user-facing text is formatted through. If
	// nil, a catalogue with the default English messages is created.
	Messages *lang.Catalogue
	// PlayerByName resolves the name of an online or known player to their
	// uuid. If nil, commands taking a player argument report the player as
	// unknown.
	PlayerByName func(name string) (uuid.UUID, bool)

	mu       sync.Mutex
	commands map[string]Command
}

// Register registers the command passed and its aliases. Registering a name
// twice overwrites the earlier command.
func (env *Env) Register(c Command) {
	env.mu.Lock()
	defer env.mu.Unlock()
	if env.commands == nil {
		env.commands = make(map[string]Command)
	}
	env.commands[c.name] = c
	for _, alias := range c.aliases {
		env.commands[alias] = c
	}
}

// ByAlias returns the command registered under the name or alias passed.
func (env *Env) ByAlias(alias string) (Command, bool) {
	env.mu.Lock()
	defer env.mu.Unlock()
	c, ok := env.commands[alias]
	return c, ok
}

// Commands returns all registered commands, deduplicated by primary name.
func (env *Env) Commands() []Command {
	env.mu.Lock()
	defer env.mu.Unlock()
	seen := make(map[string]struct{}, len(env.commands))
	out := make([]Command, 0, len(env.commands))
	for _, c := range env.commands {
		if _, ok := seen[c.name]; ok {
			continue
		}
		seen[c.name] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Translate formats the message under the key passed in the locale of the
// source.
func (env *Env) Translate(src Source, key string, args ...any) string {
	if env.Messages == nil {
		env.Messages = lang.New()
	}
	return env.Messages.Translate(src.Locale(), key, args...)
}

// lookup resolves a player name through the host's lookup function.
func (env *Env) lookup(name string) (uuid.UUID, bool) {
	if env.PlayerByName == nil {
		return uuid.Nil, false
	}
	return env.PlayerByName(name)
}

// ExecuteLine executes a command line on behalf of the Source passed. The
// line is expected to include the leading slash. Commands marked operator
// are refused for non-operator sources before their Runnable is reached.
func (env *Env) ExecuteLine(src Source, line string) *Output {
	o := &Output{}
	line = strings.TrimSpace(line)
	name, ok := strings.CutPrefix(line, "/")
	if !ok || name == "" {
		return o
	}
	args := strings.Split(name, " ")
	c, ok := env.ByAlias(args[0])
	if !ok {
		o.Error(env.Translate(src, lang.KeyUsage, "/"+args[0]))
		return o
	}
	if c.operator && !src.Operator() {
		o.Error(env.Translate(src, lang.KeyNoPermission))
		return o
	}
	c.r.Run(env, src, o, args[1:])
	return o
}
