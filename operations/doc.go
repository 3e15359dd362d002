/*
Package operations executes parsed templates against the Shortcut API in a strict, traceable
order.

# Execution

The Executor walks the operations of a template in document order. For every request it:
  - resolves $ref() expressions in the id and fields against the results of earlier operations
  - routes the action and entity pair to an API method and path
  - rewrites authoring fields into the request body through a FieldResolver
  - sends the request, or prints it when running dry

Operations with a repeat block produce one request per entry. The alias of such an operation
stores an array of entry results in entry order.

# Core Components

RouteRegistry:
  - Maps every supported action and entity pair to a method and path
  - Returns ErrUnsupportedOperation for anything else

AliasStore:
  - Holds aliased results in insertion order for $ref() resolution
  - Never replaces or removes an entry

Reporter:
  - Collects an OperationResult per request
  - MemoryReporter keeps them in memory for the ExecutionResult

# Failure handling

Variable substitution failures and a declined confirmation end the run before any request is
sent. Everything after that is scoped to the current request: with the stop policy the run ends
at the first failure, with continue it carries on. Either way the failure is recorded and
ExecutionResult.Failed reports it.

# Basic Usage

	exec := operations.NewExecutor(operations.Config{
		Client: client,
		Fields: entityfields.New(entityfields.FromLookup(resolvers)),
		Logger: lggr,
		Stdout: os.Stdout,
	})

	result, err := exec.Execute(ctx, tmpl)
*/
package operations
