// Command airunctl runs evidence packages through the validation pipeline
// from the command line, without a server or database.
package main

func main() {
	Execute()
}
