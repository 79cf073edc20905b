// Command pagectl creates and inspects pagekit page files.
package main

func main() {
	execute()
}
