/*
Package builder turns a loaded configuration model into a runnable
*pipeline.Pipeline. It is the bridge between the format-agnostic 'config'
package and the 'executor'.

Construction happens in three passes:

 1. Validation: the model must have exactly one source, at most one sink and
    unique block ids.

 2. Step creation: every block is looked up in the registry by role and kind,
    its arguments are decoded into the kind's input struct, and the step is
    built. All failures of this pass are collected and reported together.

 3. Assembly: the source, steps (in declaration order) and sink are handed to
    pipeline.Build, which enforces the remaining structural rules.

The builder never optimizes. Callers that want pruning pass the result to the
optimizer.
*/
package builder
